package form

import (
	"errors"
	"testing"

	"spendwise/internal/core"
)

func TestOpenForEditRoundTrip(t *testing.T) {
	r := core.Record{
		ID:       7,
		UserID:   1,
		Type:     core.Expense,
		Name:     "Rent",
		Category: "Housing",
		Amount:   "950.00",
		DateTime: "2025-02-01T08:30",
	}
	d := OpenForEdit(r)
	if d.ID != 7 || d.Name != "Rent" || d.Amount != "950.00" {
		t.Fatalf("draft did not copy record: %+v", d)
	}
	// Minute-precision value survives the display conversion unchanged.
	if d.DateTime != "2025-02-01T08:30" {
		t.Fatalf("date round-trip: got %q", d.DateTime)
	}

	back := ToPersistable(d, r.UserID, r.Type)
	if back != r {
		t.Fatalf("round-trip drifted: %+v != %+v", back, r)
	}
}

func TestFormatForInput(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2025-02-01T08:30", "2025-02-01T08:30"},
		{"2025-02-01T08:30:45", "2025-02-01T08:30"},
		{"2025-02-01 08:30:45", "2025-02-01T08:30"},
		{"2025-02-01", "2025-02-01T00:00"},
		// Unparseable input is shown as stored.
		{"01/02/2025", "01/02/2025"},
	}
	for _, c := range cases {
		if got := FormatForInput(c.in); got != c.want {
			t.Fatalf("FormatForInput(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUpdateFieldCopies(t *testing.T) {
	d := Draft{Name: "old"}
	d2 := UpdateField(d, FieldName, "new")
	if d.Name != "old" || d2.Name != "new" {
		t.Fatalf("UpdateField must not mutate the input: %+v %+v", d, d2)
	}
	d2 = UpdateField(d2, "unknown_field", "x")
	if d2.Name != "new" {
		t.Fatalf("unknown field must be ignored: %+v", d2)
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Name:     "Lunch",
		Category: "Food",
		Amount:   "12.50",
		DateTime: "2025-02-01T12:15",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"missing name", func(d *Draft) { d.Name = "" }, FieldName},
		{"missing category", func(d *Draft) { d.Category = " " }, FieldCategory},
		{"missing amount", func(d *Draft) { d.Amount = "" }, FieldAmount},
		{"missing date", func(d *Draft) { d.DateTime = "" }, FieldDateTime},
		{"bad date", func(d *Draft) { d.DateTime = "soon" }, FieldDateTime},
	}
	for _, c := range cases {
		d := valid
		c.mutate(&d)
		err := d.Validate()
		var ve *core.ValidationError
		if !errors.As(err, &ve) || ve.Field != c.field {
			t.Fatalf("%s: got %v, want validation error on %s", c.name, err, c.field)
		}
	}

	// Description is optional.
	d := valid
	d.Description = ""
	if err := d.Validate(); err != nil {
		t.Fatalf("description must be optional: %v", err)
	}
}
