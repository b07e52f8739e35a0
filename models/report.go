package models

// ColumnStats holds the descriptive statistics for one numeric column.
// Fields other than Count are NaN when they cannot be computed.
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// CorrelationMatrix is a square Pearson matrix; Values[i][j] pairs
// Columns[i] with Columns[j].
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for the two named columns, and false when either
// column is not part of the matrix.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Summary bundles the statistics produced for a dataset.
type Summary struct {
	Rows        int
	Stats       []ColumnStats
	Correlation *CorrelationMatrix
}
