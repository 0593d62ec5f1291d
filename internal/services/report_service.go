package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf/v2"

	"brew-backend/internal/analytics"
	"brew-backend/internal/cache"
	"brew-backend/internal/filter"
	"brew-backend/internal/timeutil"
)

const reportCacheTTL = 30 * time.Minute

// ReportService renders dashboard bundles into downloadable artifacts:
// a sectioned CSV, a formatted PDF, and a zip of per-centre PDFs.
type ReportService struct {
	dash *DashboardService
}

func NewReportService(dash *DashboardService) *ReportService {
	return &ReportService{dash: dash}
}

// GenerateDashboardCSV renders the bundle for a selection as a
// sectioned CSV export.
func (s *ReportService) GenerateDashboardCSV(ctx context.Context, sel filter.Selection) ([]byte, error) {
	table := s.dash.Table()
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}

	key := cache.ReportKey("csv", table.Fingerprint, sel.Key())
	if data, ok := cache.GetCached(ctx, key); ok {
		return data, nil
	}

	bundle, err := s.dash.ComputeBundle(sel)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// Header info
	w.Write([]string{"Beverage Dashboard Report", timeutil.FormatIST(timeutil.Now(), timeutil.DateTimeLayout)})
	w.Write([]string{"Centres", strings.Join(sel.Centres, "; ")})
	w.Write([]string{"Bill Months", strings.Join(sel.Months, "; ")})
	w.Write([]string{"Rows", strconv.Itoa(bundle.RowCount)})
	w.Write([]string{""})

	// KPIs
	w.Write([]string{"Key Metrics"})
	w.Write([]string{"Total Revenue", bundle.KPIs.TotalRevenueDisplay})
	w.Write([]string{"Unique Guests", strconv.Itoa(bundle.KPIs.UniqueGuests)})
	w.Write([]string{"Repeat Guest %", bundle.KPIs.RepeatGuestDisplay})
	w.Write([]string{"Average CLV", bundle.KPIs.AverageCLVDisplay})
	w.Write([]string{""})

	// Segments
	w.Write([]string{"Guest Segments"})
	w.Write([]string{"Segment", "Customers", "Revenue"})
	for _, seg := range bundle.Segments {
		w.Write([]string{
			string(seg.Segment),
			strconv.Itoa(seg.Customers),
			seg.RevenueDisplay,
		})
	}
	w.Write([]string{""})

	// Revenue by day and hour
	w.Write([]string{"Revenue by Day"})
	w.Write([]string{"Day", "Net Revenue"})
	for _, d := range bundle.RevenueByDay {
		w.Write([]string{d.Day, fmt.Sprintf("%.2f", d.Revenue)})
	}
	w.Write([]string{""})

	w.Write([]string{"Revenue by Hour"})
	w.Write([]string{"Hour", "Net Revenue"})
	for _, h := range bundle.RevenueByHour {
		w.Write([]string{strconv.Itoa(h.Hour), fmt.Sprintf("%.2f", h.Revenue)})
	}
	w.Write([]string{""})

	// Brands
	w.Write([]string{"Brand Performance"})
	w.Write([]string{"Brand", "Unique Guests", "Quantity Sold", "Revenue"})
	for _, b := range bundle.Brands.Brands {
		w.Write([]string{
			b.Brand,
			strconv.Itoa(b.UniqueGuests),
			fmt.Sprintf("%.0f", b.QuantitySold),
			b.RevenueDisplay,
		})
	}
	w.Write([]string{""})

	// Top customers
	w.Write([]string{"Top Customers by Net Spend"})
	w.Write([]string{"Customer", "Visits", "Total Spend"})
	for _, c := range bundle.CLV.Top {
		w.Write([]string{
			c.CustomerID,
			strconv.Itoa(c.Visits),
			analytics.FormatCurrency(c.TotalSpend),
		})
	}
	w.Write([]string{""})

	// Retention
	w.Write([]string{"Retention"})
	if bundle.RowCount > 0 {
		w.Write([]string{"Anchor Date", bundle.Retention.MaxDate.Format(timeutil.DateLayout)})
	}
	w.Write([]string{"Inactive Guests (30d)", strconv.Itoa(len(bundle.Retention.Inactive))})
	w.Write([]string{"Recently Active Guests (7d)", strconv.Itoa(len(bundle.Retention.Recent))})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	data := buf.Bytes()
	cache.SetCached(ctx, key, data, reportCacheTTL)
	return data, nil
}

// GenerateDashboardPDF renders the bundle for a selection as a PDF.
func (s *ReportService) GenerateDashboardPDF(ctx context.Context, sel filter.Selection) ([]byte, error) {
	table := s.dash.Table()
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}

	key := cache.ReportKey("pdf", table.Fingerprint, sel.Key())
	if data, ok := cache.GetCached(ctx, key); ok {
		return data, nil
	}

	bundle, err := s.dash.ComputeBundle(sel)
	if err != nil {
		return nil, err
	}

	data, err := s.renderPDF(bundle, "All Centres")
	if err != nil {
		return nil, err
	}

	cache.SetCached(ctx, key, data, reportCacheTTL)
	return data, nil
}

// renderPDF lays out one bundle as an A4 report.
func (s *ReportService) renderPDF(bundle *analytics.Bundle, scope string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Beverage Dashboard Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Scope: %s", scope), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// KPI box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Key Metrics", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Revenue: %s", pdfAmount(bundle.KPIs.TotalRevenue)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Unique Guests: %d", bundle.KPIs.UniqueGuests), "1", 1, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Repeat Guest %%: %s", bundle.KPIs.RepeatGuestDisplay), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Average CLV: %s", pdfAmount(bundle.KPIs.AverageCLV)), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Segments
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Guest Segments", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(63, 7, "Segment", "1", 0, "C", true, 0, "")
	pdf.CellFormat(63, 7, "Customers", "1", 0, "C", true, 0, "")
	pdf.CellFormat(64, 7, "Revenue", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, seg := range bundle.Segments {
		pdf.CellFormat(63, 6, string(seg.Segment), "1", 0, "C", false, 0, "")
		pdf.CellFormat(63, 6, strconv.Itoa(seg.Customers), "1", 0, "C", false, 0, "")
		pdf.CellFormat(64, 6, pdfAmount(seg.Revenue), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Brands
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Brand Performance", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(70, 7, "Brand", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Guests", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Revenue", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, b := range bundle.Brands.Brands {
		brand := b.Brand
		if len(brand) > 32 {
			brand = brand[:29] + "..."
		}
		pdf.CellFormat(70, 6, brand, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, strconv.Itoa(b.UniqueGuests), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.0f", b.QuantitySold), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, pdfAmount(b.Revenue), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Top customers
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Top Customers by Net Spend", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(80, 7, "Customer", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Visits", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 7, "Total Spend", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, c := range bundle.CLV.Top {
		pdf.CellFormat(80, 6, c.CustomerID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, strconv.Itoa(c.Visits), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 6, pdfAmount(c.TotalSpend), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Retention summary
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Retention", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Inactive Guests (30d): %d", len(bundle.Retention.Inactive)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Recently Active (7d): %d", len(bundle.Retention.Recent)), "1", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateCentrePDFs renders one dashboard PDF per centre in parallel.
func (s *ReportService) GenerateCentrePDFs(ctx context.Context) (map[string][]byte, error) {
	table := s.dash.Table()
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}

	centres := table.Centres
	months := table.BillMonths

	type pdfResult struct {
		centre string
		data   []byte
		err    error
	}

	results := make(chan pdfResult, len(centres))
	jobs := make(chan string, len(centres))

	// Start 5 workers for PDF generation
	var wg sync.WaitGroup
	numWorkers := 5
	if numWorkers > len(centres) {
		numWorkers = len(centres)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for centre := range jobs {
				if ctx.Err() != nil {
					results <- pdfResult{centre: centre, err: ctx.Err()}
					continue
				}
				sel := filter.Selection{
					Centres: []string{centre},
					Months:  append([]string(nil), months...),
				}
				bundle, err := s.dash.ComputeBundle(sel)
				if err != nil {
					results <- pdfResult{centre: centre, err: err}
					continue
				}
				data, err := s.renderPDF(bundle, centre)
				results <- pdfResult{centre: centre, data: data, err: err}
			}
		}()
	}

	// Send jobs
	for _, centre := range centres {
		jobs <- centre
	}
	close(jobs)

	// Wait and close results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect PDFs
	pdfs := make(map[string][]byte)
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("centre %s: %w", r.centre, r.err)
			}
			continue
		}
		pdfs[r.centre] = r.data
	}
	if len(pdfs) == 0 && firstErr != nil {
		return nil, firstErr
	}

	return pdfs, nil
}

// GenerateCentreZip bundles per-centre PDFs into one zip download.
func (s *ReportService) GenerateCentreZip(ctx context.Context) ([]byte, error) {
	table := s.dash.Table()
	if table == nil {
		return nil, ErrDatasetNotLoaded
	}

	key := cache.ReportKey("zip", table.Fingerprint, "centres")
	if data, ok := cache.GetCached(ctx, key); ok {
		return data, nil
	}

	batch := uuid.NewString()
	pdfs, err := s.GenerateCentrePDFs(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.SetComment("batch " + batch)

	// Deterministic member order: table order, not map order.
	for _, centre := range table.Centres {
		data, ok := pdfs[centre]
		if !ok {
			continue
		}
		fw, err := zw.Create(fmt.Sprintf("centre_%s.pdf", sanitizeFilename(centre)))
		if err != nil {
			continue
		}
		fw.Write(data)
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	log.Printf("[Reports] batch %s: %d centre reports zipped", batch, len(pdfs))

	data := buf.Bytes()
	cache.SetCached(ctx, key, data, reportCacheTTL)
	return data, nil
}

// pdfAmount formats an amount for PDF cells. The core fonts cannot
// render the rupee sign, so it becomes an Rs. prefix.
func pdfAmount(amount float64) string {
	return strings.Replace(analytics.FormatCurrency(amount), "₹", "Rs. ", 1)
}

// sanitizeFilename makes a centre name safe as a zip member name.
func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "centre"
	}
	return b.String()
}
