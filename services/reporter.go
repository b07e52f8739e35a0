package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"sleep-dashboard/models"
)

const previewRows = 5

// Reporter writes the console summary of a loaded dataset.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Print writes the load banner, column list, a preview of the first rows,
// and the descriptive statistics table, in that order.
func (r *Reporter) Print(columns []string, ds *models.Dataset, summary *models.Summary) {
	fmt.Fprintf(r.w, "\n===== CSV LOADED SUCCESSFULLY =====\n")
	fmt.Fprintf(r.w, "Columns: [%s]\n", strings.Join(columns, ", "))
	r.printPreview(ds)

	fmt.Fprintf(r.w, "\n===== SUMMARY STATISTICS =====\n")
	r.printStats(summary.Stats)
}

func (r *Reporter) printPreview(ds *models.Dataset) {
	head := ds.Head(previewRows)
	if len(head) == 0 {
		fmt.Fprintf(r.w, "Empty dataset\n")
		return
	}

	fmt.Fprintf(r.w, "%-4s %-10s", "", models.ColDate)
	for _, col := range models.NumericColumns {
		fmt.Fprintf(r.w, " %12s", col)
	}
	fmt.Fprintln(r.w)

	for _, rec := range head {
		fmt.Fprintf(r.w, "%-4d %-10s", rec.Index, rec.Date.Format("2006-01-02"))
		for _, col := range models.NumericColumns {
			fmt.Fprintf(r.w, " %12s", formatValue(rec.Measure(col).Float(), 2))
		}
		fmt.Fprintln(r.w)
	}
}

func (r *Reporter) printStats(stats []models.ColumnStats) {
	fmt.Fprintf(r.w, "%-6s", "")
	for _, st := range stats {
		fmt.Fprintf(r.w, " %12s", st.Column)
	}
	fmt.Fprintln(r.w)

	rows := []struct {
		label string
		value func(models.ColumnStats) float64
	}{
		{"count", func(s models.ColumnStats) float64 { return float64(s.Count) }},
		{"mean", func(s models.ColumnStats) float64 { return s.Mean }},
		{"std", func(s models.ColumnStats) float64 { return s.Std }},
		{"min", func(s models.ColumnStats) float64 { return s.Min }},
		{"25%", func(s models.ColumnStats) float64 { return s.Q25 }},
		{"50%", func(s models.ColumnStats) float64 { return s.Median }},
		{"75%", func(s models.ColumnStats) float64 { return s.Q75 }},
		{"max", func(s models.ColumnStats) float64 { return s.Max }},
	}

	for _, row := range rows {
		fmt.Fprintf(r.w, "%-6s", row.label)
		for _, st := range stats {
			fmt.Fprintf(r.w, " %12s", formatValue(row.value(st), 6))
		}
		fmt.Fprintln(r.w)
	}
}

func formatValue(v float64, precision int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.*f", precision, v)
}
