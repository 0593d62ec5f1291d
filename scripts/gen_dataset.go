package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"brew-backend/internal/dataset"
	"brew-backend/internal/timeutil"
)

// Invented catalogue, shaped like a real POS export.
var centres = []string{
	"Koramangala Taproom",
	"Indiranagar Taproom",
	"Whitefield Brewpub",
	"HSR Layout Taproom",
	"Jayanagar Brewpub",
}

var brands = []string{
	"Hefeweizen",
	"Belgian Wit",
	"Amber Ale",
	"Irish Stout",
	"Mango Cider",
	"Craft Lager",
	"Session IPA",
	"Kombucha",
	"Bar Bites",
	"Wood Fired Pizza",
}

func main() {
	fmt.Println("========================================")
	fmt.Println("   Generate Sample Transaction Export")
	fmt.Println("========================================")
	fmt.Println()

	out := flag.String("out", "data/transactions.csv", "output CSV path")
	bills := flag.Int("bills", 2000, "number of bills to generate")
	seed := flag.Int64("seed", 42, "random seed (same seed, same file)")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	if !*force {
		if _, err := os.Stat(*out); err == nil {
			log.Fatalf("%s already exists, pass -force to overwrite", *out)
		}
	}

	rng := rand.New(rand.NewSource(*seed))

	// Fixed 90-day window ending 2024-03-31 so the same seed always
	// yields byte-identical output.
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, timeutil.IST)

	// A guest pool much smaller than the bill count guarantees repeat visits.
	guests := make([]string, *bills/5+1)
	for i := range guests {
		guests[i] = fmt.Sprintf("9%09d", rng.Intn(1_000_000_000))
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(dataset.RequiredColumns); err != nil {
		log.Fatalf("write header: %v", err)
	}

	rows := 0
	for b := 1; b <= *bills; b++ {
		date := end.AddDate(0, 0, -rng.Intn(90))
		centre := centres[rng.Intn(len(centres))]
		guest := guests[rng.Intn(len(guests))]
		// Taproom traffic clusters from lunch into the evening.
		clock := fmt.Sprintf("%02d:%02d:%02d", 12+rng.Intn(11), rng.Intn(60), rng.Intn(60))
		billNo := fmt.Sprintf("INV%06d", b)
		month := date.Format("Jan-2006")

		items := 1 + rng.Intn(3)
		for i := 0; i < items; i++ {
			qty := float64(1 + rng.Intn(4))
			price := float64(150 + 5*rng.Intn(90))
			gross := qty * price
			net := gross * 0.95

			// Column order follows dataset.RequiredColumns.
			record := []string{
				date.Format(timeutil.DateLayout),
				clock,
				guest,
				centre,
				month,
				billNo,
				strconv.FormatFloat(gross, 'f', 2, 64),
				strconv.FormatFloat(net, 'f', 2, 64),
				strconv.FormatFloat(qty, 'f', 0, 64),
				brands[rng.Intn(len(brands))],
			}
			if err := w.Write(record); err != nil {
				log.Fatalf("write row: %v", err)
			}
			rows++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}

	fmt.Printf("  ✓ %d bills, %d rows\n", *bills, rows)
	fmt.Printf("  ✓ %d centres, %d menu groups\n", len(centres), len(brands))
	fmt.Println()
	fmt.Printf("✅ Sample export written to %s\n", *out)
}
