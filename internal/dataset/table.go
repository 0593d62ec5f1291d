package dataset

import (
	"time"
)

// Table is the immutable in-memory relation of loaded transactions.
// A reload builds a fresh Table; nothing mutates one in place, so a
// *Table can be shared across requests without locking.
type Table struct {
	Rows        []Transaction `json:"rows"`
	Fingerprint string        `json:"fingerprint"` // sha256 of the source bytes
	LoadedAt    time.Time     `json:"loaded_at"`
	Centres     []string      `json:"centres"`     // distinct POSDescription values, first-seen order
	BillMonths  []string      `json:"bill_months"` // distinct Bill Month values, first-seen order
	DateMin     time.Time     `json:"date_min"`
	DateMax     time.Time     `json:"date_max"`
}

// RowCount returns the number of loaded line items.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
