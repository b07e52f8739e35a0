package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

// StatsService computes descriptive statistics and correlations over a
// cleaned dataset. Missing values are skipped.
type StatsService struct {
	logger *utils.Logger
}

func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Generate builds the Summary for every numeric column of ds.
func (s *StatsService) Generate(ds *models.Dataset) *models.Summary {
	summary := &models.Summary{Rows: ds.Len()}

	for _, col := range models.NumericColumns {
		summary.Stats = append(summary.Stats, Describe(col, ds.Column(col)))
	}
	summary.Correlation = CorrelationMatrix(ds, models.NumericColumns)

	s.logger.Debug("[stats] Described %d columns over %d rows", len(summary.Stats), summary.Rows)
	return summary
}

// Describe returns count, mean, sample standard deviation, min, quartiles
// and max of the non-NaN values in xs.
func Describe(column string, xs []float64) models.ColumnStats {
	vals := presentValues(xs)
	st := models.ColumnStats{
		Column: column,
		Count:  len(vals),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q25:    math.NaN(),
		Median: math.NaN(),
		Q75:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(vals) == 0 {
		return st
	}

	sort.Float64s(vals)

	st.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		st.Std = stat.StdDev(vals, nil)
	}
	st.Min = floats.Min(vals)
	st.Max = floats.Max(vals)
	st.Q25 = Percentile(vals, 0.25)
	st.Median = Percentile(vals, 0.50)
	st.Q75 = Percentile(vals, 0.75)
	return st
}

// Percentile returns the p-th quantile of sorted, interpolating linearly
// between the two closest ranks: position p*(n-1), as spreadsheet and
// dataframe tools do.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Pearson returns the Pearson correlation of x and y over the indexes where
// both are present. It is NaN when fewer than two complete pairs exist or
// either side has zero variance.
func Pearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	// Rounding can push a perfect correlation just past ±1.
	return math.Max(-1, math.Min(1, r))
}

// CorrelationMatrix computes the pairwise-complete Pearson matrix over the
// given columns.
func CorrelationMatrix(ds *models.Dataset, columns []string) *models.CorrelationMatrix {
	data := make([][]float64, len(columns))
	for i, col := range columns {
		data[i] = ds.Column(col)
	}

	m := &models.CorrelationMatrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]float64, len(columns)),
	}
	for i := range columns {
		m.Values[i] = make([]float64, len(columns))
	}
	for i := range columns {
		for j := i; j < len(columns); j++ {
			r := Pearson(data[i], data[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func presentValues(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
