package dataset

import (
	"time"
)

// Source column names. Header match is exact.
const (
	ColDate        = "Date"
	ColTime        = "Time"
	ColCustomer    = "Customer Mobile No"
	ColCentre      = "POSDescription"
	ColBillMonth   = "Bill Month"
	ColBillNo      = "Bill No"
	ColGrossAmount = "Gross Amount"
	ColNetAmount   = "NetAmount"
	ColQuantity    = "Quantity"
	ColBrand       = "MenuGroupDescription"
)

// RequiredColumns lists every column the loader must find in the header row.
var RequiredColumns = []string{
	ColDate,
	ColTime,
	ColCustomer,
	ColCentre,
	ColBillMonth,
	ColBillNo,
	ColGrossAmount,
	ColNetAmount,
	ColQuantity,
	ColBrand,
}

// Transaction is one POS line item. CustomerID is an opaque string key:
// leading zeros and formatting survive ingestion unchanged, and it is
// never compared numerically. One row belongs to exactly one bill, one
// centre and one brand.
type Transaction struct {
	BillNo      string    `json:"bill_no"`
	CustomerID  string    `json:"customer_id"`
	Centre      string    `json:"centre"`
	Brand       string    `json:"brand"`
	BillMonth   string    `json:"bill_month"`
	GrossAmount float64   `json:"gross_amount"`
	NetAmount   float64   `json:"net_amount"`
	Quantity    float64   `json:"quantity"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`

	// Derived once at load.
	Day  string `json:"day"`
	Hour int    `json:"hour"`
}
