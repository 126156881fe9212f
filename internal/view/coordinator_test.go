package view

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/form"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

// fakeStore is a scriptable RecordStore that logs every call.
type fakeStore struct {
	records []core.Record

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	calls    []string
	onCreate func()
}

func (f *fakeStore) List(ctx context.Context, userID int64) ([]core.Record, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, r core.Record) error {
	f.calls = append(f.calls, "create")
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return f.createErr
	}
	r.ID = int64(len(f.records) + 1)
	f.records = append(f.records, r)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, r core.Record) error {
	f.calls = append(f.calls, "update")
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == r.ID {
			f.records[i] = r
		}
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64, t core.RecordType) error {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	out := f.records[:0]
	for _, r := range f.records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	f.records = out
	return nil
}

func newTestSessions(t *testing.T, u *session.User) *session.Store {
	t.Helper()
	s := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if u != nil {
		if err := s.Save(*u); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	return s
}

func setup(t *testing.T, store *fakeStore, opts Options) (*Coordinator, *notify.Queue) {
	t.Helper()
	q := notify.NewQueue(10, nil)
	sessions := newTestSessions(t, &session.User{ID: 1, Username: "ada"})
	c := NewCoordinator(store, q, sessions, opts)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return c, q
}

func fillDraft(c *Coordinator) {
	c.SetDraftField(form.FieldName, "Lunch")
	c.SetDraftField(form.FieldCategory, "Food")
	c.SetDraftField(form.FieldAmount, "12.50")
	c.SetDraftField(form.FieldDateTime, "2025-03-01T12:30")
}

func TestStartWithoutSession(t *testing.T) {
	store := &fakeStore{}
	q := notify.NewQueue(10, nil)
	c := NewCoordinator(store, q, newTestSessions(t, nil), Options{})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", c.State())
	}
	if len(store.calls) != 0 {
		t.Fatalf("no store call expected: %v", store.calls)
	}
}

func TestModalRequiresUser(t *testing.T) {
	store := &fakeStore{}
	q := notify.NewQueue(10, nil)
	c := NewCoordinator(store, q, newTestSessions(t, nil), Options{Confirm: func(string) bool { return true }})
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Opening the modal without a signed-in user is ignored, so the
	// submit and delete that follow are rejected instead of crashing.
	c.OpenCreate(core.Expense)
	if c.State() != StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", c.State())
	}
	fillDraft(c)
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNoModal) {
		t.Fatalf("submit: got %v, want ErrNoModal", err)
	}

	c.OpenEdit(core.Record{ID: 4, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"})
	if err := c.Delete(context.Background()); !errors.Is(err, ErrNoModal) {
		t.Fatalf("delete: got %v, want ErrNoModal", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("no store call expected: %v", store.calls)
	}
}

func TestStartLoadsRecords(t *testing.T) {
	store := &fakeStore{records: []core.Record{
		{ID: 1, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"},
	}}
	c, _ := setup(t, store, Options{})
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	if len(c.Records()) != 1 {
		t.Fatalf("records = %v", c.Records())
	}
}

func TestStartSwallowsListFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("boom")}
	c, _ := setup(t, store, Options{})
	// The failure is logged, the view stays usable with an empty list.
	if c.State() != StateReady {
		t.Fatalf("state = %v, want ready", c.State())
	}
	if len(c.Records()) != 0 {
		t.Fatalf("records = %v", c.Records())
	}
}

func TestSubmitCreateSuccess(t *testing.T) {
	store := &fakeStore{}
	c, q := setup(t, store, Options{})

	c.OpenCreate(core.Expense)
	if c.State() != StateModalOpen || c.Mode() != ModeCreate {
		t.Fatalf("modal not open for create")
	}
	fillDraft(c)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Create, then a full re-list; the list is never patched locally.
	want := []string{"list", "create", "list"}
	if len(store.calls) != 3 || store.calls[1] != "create" || store.calls[2] != "list" {
		t.Fatalf("calls = %v, want %v", store.calls, want)
	}
	if c.State() != StateReady {
		t.Fatalf("modal should close on success")
	}
	if len(c.Records()) != 1 || c.Records()[0].Name != "Lunch" {
		t.Fatalf("records = %+v", c.Records())
	}
	pending := q.Pending()
	if len(pending) != 1 || pending[0].Type != notify.Success {
		t.Fatalf("expected one success notification: %+v", pending)
	}
}

func TestSubmitUpdateUsesDraftID(t *testing.T) {
	existing := core.Record{ID: 4, UserID: 1, Type: core.Income, Name: "Paycheck", Category: "Salary", Amount: "2500", DateTime: "2025-03-01T09:00"}
	store := &fakeStore{records: []core.Record{existing}}
	c, _ := setup(t, store, Options{})

	c.OpenEdit(existing)
	if c.Mode() != ModeEdit {
		t.Fatalf("mode = %v, want edit", c.Mode())
	}
	c.SetDraftField(form.FieldAmount, "2600")

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if store.calls[1] != "update" {
		t.Fatalf("calls = %v, want update", store.calls)
	}
	if c.Records()[0].Amount != "2600" {
		t.Fatalf("records = %+v", c.Records())
	}
}

func TestSubmitValidationFailureKeepsModal(t *testing.T) {
	store := &fakeStore{}
	c, q := setup(t, store, Options{CloseModalOnError: true})

	c.OpenCreate(core.Expense)
	c.SetDraftField(form.FieldName, "incomplete")

	if err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected validation error")
	}
	// Validation never reaches the store and never closes the modal, even
	// with CloseModalOnError set.
	if len(store.calls) != 1 {
		t.Fatalf("calls = %v, want only the initial list", store.calls)
	}
	if c.State() != StateModalOpen {
		t.Fatalf("modal must stay open on validation failure")
	}
	pending := q.Pending()
	if len(pending) != 1 || pending[0].Type != notify.Error {
		t.Fatalf("expected one error notification: %+v", pending)
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	cases := []struct {
		name         string
		closeOnError bool
		wantState    State
	}{
		{"close on error", true, StateReady},
		{"keep modal", false, StateModalOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{createErr: errors.New("boom")}
			c, q := setup(t, store, Options{CloseModalOnError: tc.closeOnError})

			c.OpenCreate(core.Expense)
			fillDraft(c)

			if err := c.Submit(context.Background()); err == nil {
				t.Fatalf("expected store error")
			}
			if c.State() != tc.wantState {
				t.Fatalf("state = %v, want %v", c.State(), tc.wantState)
			}
			// No re-list after a failed save.
			if len(store.calls) != 2 {
				t.Fatalf("calls = %v", store.calls)
			}
			pending := q.Pending()
			if len(pending) != 1 || pending[0].Type != notify.Error {
				t.Fatalf("expected one error notification: %+v", pending)
			}
		})
	}
}

func TestSubmitRejectsReentry(t *testing.T) {
	store := &fakeStore{}
	c, _ := setup(t, store, Options{})

	var reentry error
	store.onCreate = func() {
		reentry = c.Submit(context.Background())
	}

	c.OpenCreate(core.Expense)
	fillDraft(c)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !errors.Is(reentry, ErrSubmitInFlight) {
		t.Fatalf("reentrant submit = %v, want ErrSubmitInFlight", reentry)
	}
}

func TestSubmitWithoutModal(t *testing.T) {
	c, _ := setup(t, &fakeStore{}, Options{})
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNoModal) {
		t.Fatalf("got %v, want ErrNoModal", err)
	}
}

func TestDeleteDeclinedMakesNoCall(t *testing.T) {
	existing := core.Record{ID: 4, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"}
	store := &fakeStore{records: []core.Record{existing}}
	c, q := setup(t, store, Options{
		Confirm: func(string) bool { return false },
	})

	c.OpenEdit(existing)
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("declined delete must not error: %v", err)
	}
	if len(store.calls) != 1 {
		t.Fatalf("calls = %v, want only the initial list", store.calls)
	}
	if c.State() != StateModalOpen {
		t.Fatalf("modal must stay open after a declined confirm")
	}
	if q.Len() != 0 {
		t.Fatalf("no notification expected: %+v", q.Pending())
	}
}

func TestDeleteSuccess(t *testing.T) {
	existing := core.Record{ID: 4, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"}
	store := &fakeStore{records: []core.Record{existing}}
	c, q := setup(t, store, Options{
		Confirm: func(string) bool { return true },
	})

	c.OpenEdit(existing)
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.calls[1] != "delete" || store.calls[2] != "list" {
		t.Fatalf("calls = %v", store.calls)
	}
	if len(c.Records()) != 0 {
		t.Fatalf("record survived delete: %+v", c.Records())
	}
	if c.State() != StateReady {
		t.Fatalf("modal should close after delete")
	}
	// Deliberately no success notification on delete.
	if q.Len() != 0 {
		t.Fatalf("unexpected notification: %+v", q.Pending())
	}
}

func TestDeleteFailureKeepsModal(t *testing.T) {
	existing := core.Record{ID: 4, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"}
	store := &fakeStore{records: []core.Record{existing}, deleteErr: errors.New("boom")}
	c, q := setup(t, store, Options{
		CloseModalOnError: true,
		Confirm:           func(string) bool { return true },
	})

	c.OpenEdit(existing)
	if err := c.Delete(context.Background()); err == nil {
		t.Fatalf("expected delete error")
	}
	if c.State() != StateModalOpen {
		t.Fatalf("modal must stay open after a failed delete")
	}
	pending := q.Pending()
	if len(pending) != 1 || pending[0].Type != notify.Error {
		t.Fatalf("expected one error notification: %+v", pending)
	}
}

func TestDeleteRequiresEditModal(t *testing.T) {
	c, _ := setup(t, &fakeStore{}, Options{Confirm: func(string) bool { return true }})

	if err := c.Delete(context.Background()); !errors.Is(err, ErrNoModal) {
		t.Fatalf("closed modal: got %v, want ErrNoModal", err)
	}

	c.OpenCreate(core.Expense)
	if err := c.Delete(context.Background()); !errors.Is(err, ErrNoModal) {
		t.Fatalf("create modal: got %v, want ErrNoModal", err)
	}
}

func TestLogoutResetsView(t *testing.T) {
	store := &fakeStore{records: []core.Record{
		{ID: 1, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"},
	}}
	c, _ := setup(t, store, Options{})

	if err := c.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if c.State() != StateUnauthenticated || c.User() != nil || len(c.Records()) != 0 {
		t.Fatalf("view not reset: state=%v user=%v records=%v", c.State(), c.User(), c.Records())
	}
}

func TestFiltersPerSection(t *testing.T) {
	store := &fakeStore{records: []core.Record{
		{ID: 1, UserID: 1, Type: core.Expense, Name: "Rent", Category: "Housing", Amount: "950", DateTime: "2025-03-01T08:00"},
		{ID: 2, UserID: 1, Type: core.Income, Name: "Paycheck", Category: "Salary", Amount: "2500", DateTime: "2025-03-01T09:00"},
	}}
	c, _ := setup(t, store, Options{})

	c.SetSearch(core.Expense, "rent")
	if got := c.ExpenseView(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expense view: %+v", got)
	}
	// The expense search does not leak into the income section.
	if got := c.IncomeView(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("income view: %+v", got)
	}
}
