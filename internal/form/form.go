// Package form owns the add/edit modal's draft state: a working copy of a
// record bound to the form, created when the modal opens and discarded on
// close, submit or delete.
package form

import (
	"fmt"
	"strings"

	"spendwise/internal/core"
)

// Draft mirrors the form controls field for field. ID zero means create
// mode, non-zero means edit mode.
type Draft struct {
	ID          int64
	Name        string
	Category    string
	Amount      string
	Description string
	DateTime    string // display format, core.DateTimeLayout
}

// Field names accepted by UpdateField.
const (
	FieldName        = "name"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldDateTime    = "date_time"
)

// OpenForCreate returns an empty draft. The record type is fixed by the
// section the modal was opened from and never lives in the draft itself.
func OpenForCreate() Draft {
	return Draft{}
}

// OpenForEdit copies a record into a draft, converting the stored
// timestamp to the display format. The conversion reformats the stored
// value's own wall-clock fields; no timezone shifting happens.
func OpenForEdit(r core.Record) Draft {
	return Draft{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Amount:      string(r.Amount),
		Description: r.Description,
		DateTime:    FormatForInput(r.DateTime),
	}
}

// FormatForInput renders a stored timestamp as a datetime-local input
// value with minute precision. Unparseable input is returned unchanged so
// the user sees what the store holds.
func FormatForInput(stored string) string {
	t, err := core.ParseDateTime(stored)
	if err != nil {
		return stored
	}
	return t.Format(core.DateTimeLayout)
}

// UpdateField returns a copy of the draft with exactly one field replaced.
func UpdateField(d Draft, field, value string) Draft {
	switch field {
	case FieldName:
		d.Name = value
	case FieldCategory:
		d.Category = value
	case FieldAmount:
		d.Amount = value
	case FieldDescription:
		d.Description = value
	case FieldDateTime:
		d.DateTime = value
	}
	return d
}

// Validate applies the same checks the form controls enforce: the
// required fields must be present. Category membership and business rules
// are left to the server.
func (d Draft) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{FieldName, d.Name},
		{FieldCategory, d.Category},
		{FieldAmount, d.Amount},
		{FieldDateTime, d.DateTime},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &core.ValidationError{Field: r.field, Reason: "required"}
		}
	}
	if _, err := core.ParseDateTime(d.DateTime); err != nil {
		return &core.ValidationError{Field: FieldDateTime, Reason: fmt.Sprintf("not a valid timestamp: %v", err)}
	}
	return nil
}

// ToPersistable merges the owning user and section type into the draft,
// producing the payload for create or update.
func ToPersistable(d Draft, userID int64, t core.RecordType) core.Record {
	return core.Record{
		ID:          d.ID,
		UserID:      userID,
		Type:        t,
		Name:        d.Name,
		Category:    d.Category,
		Amount:      core.Amount(d.Amount),
		Description: d.Description,
		DateTime:    d.DateTime,
	}
}
