// Package filter derives the income and expense views from a raw record
// list. Every function is pure; the coordinator recomputes views from
// scratch whenever the list or a control changes.
package filter

import (
	"strings"
	"time"

	"spendwise/internal/core"
)

// Operator is an amount comparison operator as sent by the filter control.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// AmountFilter compares record amounts against a threshold. An empty
// Amount is the explicit "no filter" sentinel.
type AmountFilter struct {
	Operator Operator
	Amount   string
}

// DateFilter bounds records to [Start, End] on the full timestamp. Either
// side may be empty.
type DateFilter struct {
	Start string
	End   string
}

// State is one section's full set of controls.
type State struct {
	Search string
	Amount AmountFilter
	Date   DateFilter
}

// MatchesSearch reports whether query is a case-insensitive substring of
// the record's name or category. An empty query matches everything.
func MatchesSearch(r core.Record, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Category), q)
}

// ByAmount applies the amount comparison. Policy, pinned by tests:
//   - only the empty string is the no-filter sentinel; a whitespace-only
//     threshold parses as NaN and excludes everything
//   - an unrecognized operator passes every record through (fail-open)
//   - a non-numeric side is NaN, and NaN comparisons are false, so such
//     records (or all records, for a NaN threshold) are excluded
func ByAmount(records []core.Record, f AmountFilter) []core.Record {
	if f.Amount == "" {
		return records
	}
	switch f.Operator {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
	default:
		// UnknownOperator → pass through.
		return records
	}

	threshold, thresholdOK := core.ParseFloatPrefix(f.Amount)
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		v, ok := r.Amount.Float()
		if !ok || !thresholdOK {
			continue
		}
		keep := false
		switch f.Operator {
		case OpGreater:
			keep = v > threshold
		case OpLess:
			keep = v < threshold
		case OpGreaterEqual:
			keep = v >= threshold
		case OpLessEqual:
			keep = v <= threshold
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// ByDate excludes records strictly before Start or strictly after End.
// Both bounds unset is the identity. A record whose timestamp cannot be
// parsed is kept: an invalid date compares false against both bounds, so
// neither exclusion fires (fail-open, unlike the amount filter).
func ByDate(records []core.Record, f DateFilter) []core.Record {
	start, hasStart := parseBound(f.Start)
	end, hasEnd := parseBound(f.End)
	if !hasStart && !hasEnd {
		return records
	}

	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if t, err := core.ParseDateTime(r.DateTime); err == nil {
			if hasStart && t.Before(start) {
				continue
			}
			if hasEnd && t.After(end) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func parseBound(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := core.ParseDateTime(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DeriveView composes type equality, search, amount and date predicates.
// The predicates are independent, so the result is their intersection
// regardless of application order.
func DeriveView(records []core.Record, t core.RecordType, s State) []core.Record {
	matched := make([]core.Record, 0, len(records))
	for _, r := range records {
		if r.Type == t && MatchesSearch(r, s.Search) {
			matched = append(matched, r)
		}
	}
	return ByDate(ByAmount(matched, s.Amount), s.Date)
}
