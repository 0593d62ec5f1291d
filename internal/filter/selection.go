package filter

import (
	"sort"
	"strings"

	"brew-backend/internal/dataset"
)

// Selection is the pair of allowed value sets for the two filter
// dimensions. Filtering keeps rows whose centre is in Centres AND whose
// bill month is in Months. An empty set matches nothing: an empty
// selection yields an empty result, never "all rows".
type Selection struct {
	Centres []string `json:"centres"`
	Months  []string `json:"months"`
}

// Default returns the selection used absent explicit user input: every
// observed distinct value of both dimensions.
func Default(table *dataset.Table) Selection {
	return Selection{
		Centres: append([]string(nil), table.Centres...),
		Months:  append([]string(nil), table.BillMonths...),
	}
}

// Key returns a canonical string form of the selection, stable under
// reordering of the selected values. Cache keys are built from it.
func (s Selection) Key() string {
	centres := append([]string(nil), s.Centres...)
	months := append([]string(nil), s.Months...)
	sort.Strings(centres)
	sort.Strings(months)

	var b strings.Builder
	b.WriteString("centres=")
	b.WriteString(strings.Join(centres, ","))
	b.WriteString("&months=")
	b.WriteString(strings.Join(months, ","))
	return b.String()
}

// IsEmpty reports whether either dimension selects nothing.
func (s Selection) IsEmpty() bool {
	return len(s.Centres) == 0 || len(s.Months) == 0
}
