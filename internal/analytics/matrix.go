package analytics

import (
	"sort"

	"brew-backend/internal/dataset"
)

// BrandMatrix cross-tabulates distinct guest counts by centre (rows)
// and brand (columns). Every centre×brand combination observed in the
// filtered table gets a cell; combinations with no overlap hold 0, they
// are never absent.
type BrandMatrix struct {
	Centres []string `json:"centres"`
	Brands  []string `json:"brands"`
	Counts  [][]int  `json:"counts"`
}

// CentreBrandMatrix builds the matrix from the filtered rows. Labels
// are sorted ascending on both axes.
func CentreBrandMatrix(rows []dataset.Transaction) BrandMatrix {
	customers := make(map[string]map[string]map[string]struct{})
	brandSet := make(map[string]struct{})

	for _, row := range rows {
		byBrand := customers[row.Centre]
		if byBrand == nil {
			byBrand = make(map[string]map[string]struct{})
			customers[row.Centre] = byBrand
		}
		set := byBrand[row.Brand]
		if set == nil {
			set = make(map[string]struct{})
			byBrand[row.Brand] = set
		}
		set[row.CustomerID] = struct{}{}
		brandSet[row.Brand] = struct{}{}
	}

	matrix := BrandMatrix{
		Centres: make([]string, 0, len(customers)),
		Brands:  make([]string, 0, len(brandSet)),
		Counts:  [][]int{},
	}
	for centre := range customers {
		matrix.Centres = append(matrix.Centres, centre)
	}
	for brand := range brandSet {
		matrix.Brands = append(matrix.Brands, brand)
	}
	sort.Strings(matrix.Centres)
	sort.Strings(matrix.Brands)

	for _, centre := range matrix.Centres {
		counts := make([]int, len(matrix.Brands))
		for j, brand := range matrix.Brands {
			counts[j] = len(customers[centre][brand])
		}
		matrix.Counts = append(matrix.Counts, counts)
	}
	return matrix
}
