package filter

import (
	"github.com/RoaringBitmap/roaring"

	"brew-backend/internal/dataset"
)

// Index holds per-dimension row bitmaps for one table. Built once per
// loaded table and shared by every request against that snapshot;
// lookups never mutate it.
type Index struct {
	byCentre map[string]*roaring.Bitmap
	byMonth  map[string]*roaring.Bitmap
}

// NewIndex scans the table once and builds a value→rows bitmap for each
// filter dimension.
func NewIndex(table *dataset.Table) *Index {
	idx := &Index{
		byCentre: make(map[string]*roaring.Bitmap),
		byMonth:  make(map[string]*roaring.Bitmap),
	}
	for i, row := range table.Rows {
		bm := idx.byCentre[row.Centre]
		if bm == nil {
			bm = roaring.New()
			idx.byCentre[row.Centre] = bm
		}
		bm.Add(uint32(i))

		bm = idx.byMonth[row.BillMonth]
		if bm == nil {
			bm = roaring.New()
			idx.byMonth[row.BillMonth] = bm
		}
		bm.Add(uint32(i))
	}
	return idx
}

// Apply resolves a selection to the matching row set: union of the
// chosen value bitmaps within each dimension, intersection across
// dimensions. Values never seen in the table match nothing.
func (idx *Index) Apply(sel Selection) *roaring.Bitmap {
	centres := roaring.New()
	for _, c := range sel.Centres {
		if bm, ok := idx.byCentre[c]; ok {
			centres.Or(bm)
		}
	}
	months := roaring.New()
	for _, m := range sel.Months {
		if bm, ok := idx.byMonth[m]; ok {
			months.Or(bm)
		}
	}
	return roaring.And(centres, months)
}

// Rows materializes the filtered subset in table order.
func (idx *Index) Rows(table *dataset.Table, sel Selection) []dataset.Transaction {
	matched := idx.Apply(sel)
	rows := make([]dataset.Transaction, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		rows = append(rows, table.Rows[it.Next()])
	}
	return rows
}

// MatchCount returns how many rows a selection keeps without
// materializing them.
func (idx *Index) MatchCount(sel Selection) uint64 {
	return idx.Apply(sel).GetCardinality()
}
