// Package view orchestrates the records screen: it owns the authoritative
// record list, the per-section filter state and the modal draft, and it is
// the only component that talks to the record store. Everything runs on a
// single goroutine, mirroring the event-loop model of the original UI; the
// store calls are the suspension points.
package view

import (
	"context"
	"errors"
	"log/slog"

	"spendwise/internal/core"
	"spendwise/internal/filter"
	"spendwise/internal/form"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

// RecordStore is the slice of the store client the coordinator needs.
type RecordStore interface {
	List(ctx context.Context, userID int64) ([]core.Record, error)
	Create(ctx context.Context, r core.Record) error
	Update(ctx context.Context, r core.Record) error
	Delete(ctx context.Context, id int64, t core.RecordType) error
}

type State int

const (
	StateUnauthenticated State = iota
	StateLoading
	StateReady
	StateModalOpen
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

var (
	// ErrSubmitInFlight rejects a submit or delete while a previous
	// mutation has not resolved yet (the disable-while-pending latch).
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrNoModal is returned when Submit or Delete is called with the
	// modal closed.
	ErrNoModal = errors.New("no modal is open")
)

// Options tune coordinator behavior.
type Options struct {
	// CloseModalOnError closes the modal even when a submit fails,
	// discarding the draft. True reproduces the original behavior.
	CloseModalOnError bool

	// Confirm is asked before a delete. Returning false aborts the
	// delete with no store call. Nil means never confirmed.
	Confirm func(prompt string) bool

	Logger *slog.Logger
}

// Coordinator is the view state machine. Not safe for concurrent use.
type Coordinator struct {
	store    RecordStore
	notices  *notify.Queue
	sessions *session.Store
	opts     Options
	log      *slog.Logger

	user    *session.User
	state   State
	mode    Mode
	section core.RecordType // type the open modal is bound to
	draft   form.Draft

	records  []core.Record
	filters  map[core.RecordType]filter.State
	inFlight bool
}

func NewCoordinator(store RecordStore, notices *notify.Queue, sessions *session.Store, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    store,
		notices:  notices,
		sessions: sessions,
		opts:     opts,
		log:      logger,
		state:    StateUnauthenticated,
		filters: map[core.RecordType]filter.State{
			core.Income:  {Amount: filter.AmountFilter{Operator: filter.OpGreater}},
			core.Expense: {Amount: filter.AmountFilter{Operator: filter.OpGreater}},
		},
	}
}

// Start mounts the view: it reads the persisted session and, when one is
// present, performs the initial load. Session absence is not an error; the
// screen just renders its call to action.
func (c *Coordinator) Start(ctx context.Context) error {
	u, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if u == nil {
		c.state = StateUnauthenticated
		return nil
	}
	c.user = u
	c.state = StateReady
	c.reload(ctx)
	return nil
}

// reload replaces the record list wholesale from the store. A failed list
// is logged and swallowed: the previous list stays untouched and the view
// remains usable.
func (c *Coordinator) reload(ctx context.Context) {
	prev := c.state
	c.state = StateLoading
	records, err := c.store.List(ctx, c.user.ID)
	c.state = prev
	if err != nil {
		c.log.ErrorContext(ctx, "record list failed", "user_id", c.user.ID, "error", err)
		return
	}
	c.records = records
}

func (c *Coordinator) State() State { return c.state }
func (c *Coordinator) Mode() Mode   { return c.mode }

// User returns the authenticated user, or nil.
func (c *Coordinator) User() *session.User { return c.user }

// Records returns the authoritative, unfiltered list.
func (c *Coordinator) Records() []core.Record { return c.records }

// Draft returns the modal's working copy.
func (c *Coordinator) Draft() form.Draft { return c.draft }

// Filters returns one section's control state.
func (c *Coordinator) Filters(t core.RecordType) filter.State { return c.filters[t] }

func (c *Coordinator) SetSearch(t core.RecordType, query string) {
	s := c.filters[t]
	s.Search = query
	c.filters[t] = s
}

func (c *Coordinator) SetAmountFilter(t core.RecordType, f filter.AmountFilter) {
	s := c.filters[t]
	s.Amount = f
	c.filters[t] = s
}

func (c *Coordinator) SetDateFilter(t core.RecordType, f filter.DateFilter) {
	s := c.filters[t]
	s.Date = f
	c.filters[t] = s
}

// View derives one section's filtered record list.
func (c *Coordinator) View(t core.RecordType) []core.Record {
	return filter.DeriveView(c.records, t, c.filters[t])
}

func (c *Coordinator) IncomeView() []core.Record  { return c.View(core.Income) }
func (c *Coordinator) ExpenseView() []core.Record { return c.View(core.Expense) }

// OpenCreate opens the modal with an empty draft for the given section.
// Without a signed-in user there is nothing to attach a record to, so the
// call is ignored and the state stays unauthenticated.
func (c *Coordinator) OpenCreate(t core.RecordType) {
	if c.user == nil {
		return
	}
	c.section = t
	c.draft = form.OpenForCreate()
	c.mode = ModeCreate
	c.state = StateModalOpen
}

// OpenEdit opens the modal with a copy of an existing record. The type is
// taken from the record and cannot be changed through the form. Ignored
// without a signed-in user, like OpenCreate.
func (c *Coordinator) OpenEdit(r core.Record) {
	if c.user == nil {
		return
	}
	c.section = r.Type
	c.draft = form.OpenForEdit(r)
	c.mode = ModeEdit
	c.state = StateModalOpen
}

// CloseModal discards the draft and returns to the ready state.
func (c *Coordinator) CloseModal() {
	c.draft = form.Draft{}
	c.state = StateReady
}

// SetDraftField replaces a single draft field.
func (c *Coordinator) SetDraftField(field, value string) {
	c.draft = form.UpdateField(c.draft, field, value)
}

// Submit persists the draft: create when it has no id, update otherwise.
// On success the list is re-fetched from the store (never patched in
// place), the modal closes and a success notification is emitted. On
// failure an error notification is emitted and the modal closes only when
// CloseModalOnError is set; no re-list happens.
func (c *Coordinator) Submit(ctx context.Context) error {
	if c.state != StateModalOpen {
		return ErrNoModal
	}
	if c.inFlight {
		return ErrSubmitInFlight
	}

	if err := c.draft.Validate(); err != nil {
		c.notices.Errorf(err.Error())
		return err
	}

	c.inFlight = true
	defer func() { c.inFlight = false }()

	rec := form.ToPersistable(c.draft, c.user.ID, c.section)
	var err error
	if rec.ID == 0 {
		err = c.store.Create(ctx, rec)
	} else {
		err = c.store.Update(ctx, rec)
	}
	if err != nil {
		c.log.ErrorContext(ctx, "record save failed", "record_id", rec.ID, "type", rec.Type, "error", err)
		c.notices.Errorf("Failed to save the record.")
		if c.opts.CloseModalOnError {
			c.CloseModal()
		}
		return err
	}

	c.reload(ctx)
	c.CloseModal()
	c.notices.Successf("Record saved successfully!")
	return nil
}

// Delete removes the record bound to the edit modal after interactive
// confirmation. A declined confirmation makes no store call and leaves the
// modal open. No success notification is emitted on delete.
func (c *Coordinator) Delete(ctx context.Context) error {
	if c.state != StateModalOpen || c.mode != ModeEdit || c.draft.ID == 0 {
		return ErrNoModal
	}
	if c.inFlight {
		return ErrSubmitInFlight
	}
	if c.opts.Confirm == nil || !c.opts.Confirm("Are you sure you want to delete this record?") {
		return nil
	}

	c.inFlight = true
	defer func() { c.inFlight = false }()

	if err := c.store.Delete(ctx, c.draft.ID, c.section); err != nil {
		c.log.ErrorContext(ctx, "record delete failed", "record_id", c.draft.ID, "type", c.section, "error", err)
		c.notices.Errorf("Failed to delete the record.")
		return err
	}

	c.reload(ctx)
	c.CloseModal()
	return nil
}

// Logout clears the persisted session and resets the view.
func (c *Coordinator) Logout() error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	c.user = nil
	c.records = nil
	c.draft = form.Draft{}
	c.state = StateUnauthenticated
	return nil
}
