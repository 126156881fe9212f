package core

// Catalog is the static mapping from record type to its ordered list of
// allowed category labels. Records are checked against it at creation
// time only.
var Catalog = map[RecordType][]string{
	Income: {
		"Salary",
		"Job",
		"Gifts",
		"Investments",
		"Sales",
		"Other",
	},
	Expense: {
		"Food",
		"Transport",
		"Housing",
		"Health",
		"Entertainment",
		"Clothing",
		"Education",
		"Other",
	},
}

// Categories returns the catalog list for a type. Unknown types get nil.
func Categories(t RecordType) []string {
	cats := Catalog[t]
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

func CatalogContains(t RecordType, category string) bool {
	for _, c := range Catalog[t] {
		if c == category {
			return true
		}
	}
	return false
}
