package filter

import (
	"testing"

	"spendwise/internal/core"
)

func rec(id int64, t core.RecordType, name, category, amount, dateTime string) core.Record {
	return core.Record{ID: id, UserID: 1, Type: t, Name: name, Category: category, Amount: core.Amount(amount), DateTime: dateTime}
}

func ids(records []core.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchesSearch(t *testing.T) {
	r := rec(1, core.Expense, "Grocery run", "Food", "10", "2025-01-01T10:00")
	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"grocery", true},
		{"GROCERY", true},
		{"ery r", true},
		{"food", true},
		{"foo", true},
		{"transport", false},
	}
	for _, c := range cases {
		if got := MatchesSearch(r, c.query); got != c.want {
			t.Fatalf("MatchesSearch(%q) = %v, want %v", c.query, got, c.want)
		}
	}
}

func TestByAmountEmptyIsIdentity(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "10", "2025-01-01T10:00"),
		rec(2, core.Expense, "b", "Food", "not a number", "2025-01-01T10:00"),
	}
	got := ByAmount(records, AmountFilter{Operator: OpGreater, Amount: ""})
	if !equalIDs(ids(got), 1, 2) {
		t.Fatalf("empty amount should pass everything: %v", ids(got))
	}
	// Idempotent: applying the identity twice changes nothing.
	again := ByAmount(got, AmountFilter{Operator: OpGreater, Amount: ""})
	if !equalIDs(ids(again), 1, 2) {
		t.Fatalf("identity not idempotent: %v", ids(again))
	}

	// Only the empty string is the sentinel: a whitespace threshold is a
	// NaN threshold and excludes everything.
	if got := ByAmount(records, AmountFilter{Operator: OpGreater, Amount: "  "}); len(got) != 0 {
		t.Fatalf("whitespace threshold must match nothing: %v", ids(got))
	}
}

func TestByAmountUnknownOperatorPassesThrough(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "10", "2025-01-01T10:00"),
		rec(2, core.Expense, "b", "Food", "999", "2025-01-01T10:00"),
	}
	// A threshold is set, but the operator is unrecognized: nothing is
	// filtered rather than everything.
	got := ByAmount(records, AmountFilter{Operator: "!=", Amount: "10"})
	if !equalIDs(ids(got), 1, 2) {
		t.Fatalf("unknown operator must pass through: %v", ids(got))
	}
}

func TestByAmountOperators(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "5", "2025-01-01T10:00"),
		rec(2, core.Expense, "b", "Food", "10", "2025-01-01T10:00"),
		rec(3, core.Expense, "c", "Food", "15.5", "2025-01-01T10:00"),
	}
	cases := []struct {
		op   Operator
		want []int64
	}{
		{OpGreater, []int64{3}},
		{OpGreaterEqual, []int64{2, 3}},
		{OpLess, []int64{1}},
		{OpLessEqual, []int64{1, 2}},
	}
	for _, c := range cases {
		got := ByAmount(records, AmountFilter{Operator: c.op, Amount: "10"})
		if !equalIDs(ids(got), c.want...) {
			t.Fatalf("op %q: got %v, want %v", c.op, ids(got), c.want)
		}
	}
}

func TestByAmountNaNComparesFalse(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "abc", "2025-01-01T10:00"),
		rec(2, core.Expense, "b", "Food", "50", "2025-01-01T10:00"),
	}
	got := ByAmount(records, AmountFilter{Operator: OpGreater, Amount: "10"})
	if !equalIDs(ids(got), 2) {
		t.Fatalf("non-numeric record amount must be excluded: %v", ids(got))
	}

	// A non-numeric threshold excludes everything (but is not the empty
	// sentinel, so it is not the identity).
	got = ByAmount(records, AmountFilter{Operator: OpGreater, Amount: "xyz"})
	if len(got) != 0 {
		t.Fatalf("NaN threshold must match nothing: %v", ids(got))
	}
}

func TestByAmountParsesPrefixes(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "12abc", "2025-01-01T10:00"),
	}
	got := ByAmount(records, AmountFilter{Operator: OpGreater, Amount: "10"})
	if !equalIDs(ids(got), 1) {
		t.Fatalf("numeric prefix should parse as 12: %v", ids(got))
	}
}

func TestByDateBounds(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "1", "2025-01-01T10:00"),
		rec(2, core.Expense, "b", "Food", "1", "2025-01-15T10:00"),
		rec(3, core.Expense, "c", "Food", "1", "2025-01-31T10:00"),
	}

	got := ByDate(records, DateFilter{})
	if !equalIDs(ids(got), 1, 2, 3) {
		t.Fatalf("no bounds must be identity: %v", ids(got))
	}

	got = ByDate(records, DateFilter{Start: "2025-01-10", End: "2025-01-20"})
	if !equalIDs(ids(got), 2) {
		t.Fatalf("window: got %v", ids(got))
	}

	// Bounds are inclusive on the full timestamp.
	got = ByDate(records, DateFilter{Start: "2025-01-15T10:00", End: "2025-01-15T10:00"})
	if !equalIDs(ids(got), 2) {
		t.Fatalf("start==end must keep the exact match: %v", ids(got))
	}

	// A record on the end day but after the bound's midnight falls out.
	got = ByDate(records, DateFilter{End: "2025-01-15"})
	if !equalIDs(ids(got), 1) {
		t.Fatalf("end bound is a timestamp, not a day: %v", ids(got))
	}
}

func TestByDateKeepsUnparseableDates(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "a", "Food", "1", "garbage"),
		rec(2, core.Expense, "b", "Food", "1", "2025-01-15T10:00"),
		rec(3, core.Expense, "c", "Food", "1", "2024-12-01T10:00"),
	}
	// An invalid date compares false against both bounds, so neither
	// exclusion fires and the record stays in the view.
	got := ByDate(records, DateFilter{Start: "2025-01-01"})
	if !equalIDs(ids(got), 1, 2) {
		t.Fatalf("unparseable date must be kept: %v", ids(got))
	}
	got = ByDate(records, DateFilter{Start: "2025-01-01", End: "2025-01-31"})
	if !equalIDs(ids(got), 1, 2) {
		t.Fatalf("unparseable date must be kept with both bounds: %v", ids(got))
	}
	// Without bounds everything passes untouched.
	got = ByDate(records, DateFilter{})
	if !equalIDs(ids(got), 1, 2, 3) {
		t.Fatalf("identity must keep everything: %v", ids(got))
	}
}

// Scenario: search and amount filters compose as an intersection.
func TestDeriveViewComposesFilters(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "Coffee", "Food", "3.50", "2025-01-05T08:00"),
		rec(2, core.Expense, "Groceries", "Food", "82.10", "2025-01-10T18:00"),
		rec(3, core.Expense, "Train ticket", "Transport", "12.00", "2025-01-12T07:30"),
		rec(4, core.Income, "Paycheck", "Salary", "2500", "2025-01-01T09:00"),
	}

	// Type partition first: income never shows in the expense view.
	got := DeriveView(records, core.Expense, State{})
	if !equalIDs(ids(got), 1, 2, 3) {
		t.Fatalf("expense view: %v", ids(got))
	}

	// Search narrows by category, amount narrows further.
	s := State{
		Search: "food",
		Amount: AmountFilter{Operator: OpGreater, Amount: "10"},
	}
	got = DeriveView(records, core.Expense, s)
	if !equalIDs(ids(got), 2) {
		t.Fatalf("composed view: %v", ids(got))
	}

	// Adding a date bound intersects again.
	s.Date = DateFilter{End: "2025-01-09"}
	got = DeriveView(records, core.Expense, s)
	if len(got) != 0 {
		t.Fatalf("date bound should empty the view: %v", ids(got))
	}
}

// Clearing the amount filter widens the view back to the search result,
// independent of the operator left behind in the control.
func TestDeriveViewClearedAmountKeepsOperator(t *testing.T) {
	records := []core.Record{
		rec(1, core.Expense, "Coffee", "Food", "3.50", "2025-01-05T08:00"),
		rec(2, core.Expense, "Groceries", "Food", "82.10", "2025-01-10T18:00"),
	}
	s := State{Amount: AmountFilter{Operator: OpLess, Amount: "10"}}
	if got := DeriveView(records, core.Expense, s); !equalIDs(ids(got), 1) {
		t.Fatalf("narrowed: %v", ids(got))
	}
	s.Amount.Amount = ""
	if got := DeriveView(records, core.Expense, s); !equalIDs(ids(got), 1, 2) {
		t.Fatalf("cleared: %v", ids(got))
	}
}
