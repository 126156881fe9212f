package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

// DateTimeLayout is the minute-precision wire and storage format for
// record timestamps (the value a datetime-local form control produces).
const DateTimeLayout = "2006-01-02T15:04"

type (
	RecordType string

	// Amount carries the decimal quantity exactly as the user typed it.
	// It stays a string end-to-end so filtering can apply parseFloat
	// semantics to whatever was submitted.
	Amount string

	// Record is one income or expense entry owned by a user.
	// ID is zero for a record the store has not created yet.
	Record struct {
		ID          int64      `json:"id,omitempty"`
		UserID      int64      `json:"userId"`
		Type        RecordType `json:"type"`
		Name        string     `json:"name"`
		Category    string     `json:"category"`
		Amount      Amount     `json:"amount"`
		Description string     `json:"description,omitempty"`
		DateTime    string     `json:"date_time"`
	}
)

var (
	ErrInvalidType     = errors.New("invalid record type")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("category not in catalog for type")
	ErrEmptyAmount     = errors.New("empty amount")
	ErrEmptyDateTime   = errors.New("empty date_time")
	ErrMissingID       = errors.New("missing record id")
)

func (t RecordType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// UnmarshalJSON accepts both a quoted string and a bare JSON number, since
// stored rows may round-trip the amount as a numeric value.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// Float parses the amount the way JS parseFloat does: the longest leading
// numeric prefix wins, and a value with no such prefix is NaN (ok=false).
func (a Amount) Float() (float64, bool) {
	return ParseFloatPrefix(string(a))
}

// ParseFloatPrefix parses the longest valid floating-point prefix of s.
// Returns ok=false when no prefix parses, mirroring parseFloat's NaN.
func ParseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i := range s {
		if _, err := strconv.ParseFloat(s[:i+1], 64); err == nil {
			end = i + 1
		}
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDateTime parses a record timestamp. Stored values use
// DateTimeLayout; RFC 3339 and a space-separated variant are tolerated for
// rows written by other tooling. The wall-clock fields are taken as-is,
// with no timezone conversion.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		DateTimeLayout,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Validate checks the fields every create/update requires. Category
// membership is enforced here at creation time only; readers never
// re-validate it.
func (r Record) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if !CatalogContains(r.Type, r.Category) {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(string(r.Amount)) == "" {
		return ErrEmptyAmount
	}
	if strings.TrimSpace(r.DateTime) == "" {
		return ErrEmptyDateTime
	}
	if _, err := ParseDateTime(r.DateTime); err != nil {
		return err
	}
	return nil
}
