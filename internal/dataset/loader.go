package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"brew-backend/internal/timeutil"
)

// Fingerprint returns the sha256 hex digest of the source bytes. Two
// sources with the same fingerprint load to identical tables, which is
// what downstream memoization keys on.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load parses a CSV export into a Table. A missing required column or a
// row whose date or time does not parse is a load error; rows are never
// silently dropped. Loading identical bytes yields an identical table.
func Load(data []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty source: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := colIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	table := &Table{
		Fingerprint: Fingerprint(data),
		LoadedAt:    timeutil.Now(),
	}
	seenCentre := make(map[string]bool)
	seenMonth := make(map[string]bool)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			return strings.TrimSpace(record[colIndex[col]])
		}

		date, err := timeutil.ParseDate(get(ColDate))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColDate, err)
		}
		timeOfDay := get(ColTime)
		hour, err := timeutil.ParseHour(timeOfDay)
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColTime, err)
		}
		gross, err := parseAmount(get(ColGrossAmount))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColGrossAmount, err)
		}
		net, err := parseAmount(get(ColNetAmount))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColNetAmount, err)
		}
		qty, err := parseAmount(get(ColQuantity))
		if err != nil {
			return nil, fmt.Errorf("line %d, column %q: %w", line, ColQuantity, err)
		}

		tx := Transaction{
			BillNo:      get(ColBillNo),
			CustomerID:  get(ColCustomer),
			Centre:      get(ColCentre),
			Brand:       get(ColBrand),
			BillMonth:   get(ColBillMonth),
			GrossAmount: gross,
			NetAmount:   net,
			Quantity:    qty,
			Date:        date,
			Time:        timeOfDay,
			Day:         timeutil.DayName(date),
			Hour:        hour,
		}
		table.Rows = append(table.Rows, tx)

		if !seenCentre[tx.Centre] {
			seenCentre[tx.Centre] = true
			table.Centres = append(table.Centres, tx.Centre)
		}
		if !seenMonth[tx.BillMonth] {
			seenMonth[tx.BillMonth] = true
			table.BillMonths = append(table.BillMonths, tx.BillMonth)
		}
		if table.DateMin.IsZero() || date.Before(table.DateMin) {
			table.DateMin = date
		}
		if date.After(table.DateMax) {
			table.DateMax = date
		}
	}

	return table, nil
}

// parseAmount parses a numeric cell. Empty cells read as zero; anything
// else must be a valid number.
func parseAmount(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	// Exports sometimes carry thousands separators.
	value = strings.ReplaceAll(value, ",", "")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable number %q", value)
	}
	return f, nil
}
