package models

import (
	"math"
	"time"
)

// Column names expected in the input file.
const (
	ColDate       = "Date"
	ColSleepHours = "SleepHours"
	ColScreenTime = "ScreenTime"
	ColMood       = "Mood"
	ColEnergy     = "Energy"
)

// RequiredColumns lists the headers the loader insists on, in file order.
var RequiredColumns = []string{ColDate, ColSleepHours, ColScreenTime, ColMood, ColEnergy}

// NumericColumns lists the measure columns in the order they are reported.
var NumericColumns = []string{ColSleepHours, ColScreenTime, ColMood, ColEnergy}

// RawTable holds the file contents with header names normalised but every
// cell still in its original textual form.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column name, or "" when the column is absent
// or the row is short.
func (t *RawTable) Cell(row int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Measure is a real number that may be missing.
type Measure struct {
	Value float64
	Valid bool
}

// Present wraps v as a non-missing Measure.
func Present(v float64) Measure { return Measure{Value: v, Valid: true} }

// Missing is the absence-of-value marker.
var Missing = Measure{}

// Float returns the value, or NaN when missing.
func (m Measure) Float() float64 {
	if !m.Valid {
		return math.NaN()
	}
	return m.Value
}

// DateResult is the outcome of parsing a date cell.
type DateResult struct {
	Time  time.Time
	Valid bool
}

// ParsedRow is one input row after per-cell coercion and before filtering.
type ParsedRow struct {
	Date       DateResult
	SleepHours Measure
	ScreenTime Measure
	Mood       Measure
	Energy     Measure
}

// SleepRecord is one cleaned row. Date and SleepHours are always present.
type SleepRecord struct {
	Index      int
	Date       time.Time
	SleepHours float64
	ScreenTime Measure
	Mood       Measure
	Energy     Measure
}

// Measure returns the named numeric column of the record.
func (r SleepRecord) Measure(column string) Measure {
	switch column {
	case ColSleepHours:
		return Present(r.SleepHours)
	case ColScreenTime:
		return r.ScreenTime
	case ColMood:
		return r.Mood
	case ColEnergy:
		return r.Energy
	default:
		return Missing
	}
}

// Dataset is the cleaned table. It is never mutated after cleaning.
type Dataset struct {
	Records []SleepRecord
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Column returns the named numeric column as a slice with NaN for missing
// values.
func (d *Dataset) Column(name string) []float64 {
	out := make([]float64, 0, d.Len())
	for _, r := range d.Records {
		out = append(out, r.Measure(name).Float())
	}
	return out
}

// Head returns at most n records from the front of the dataset.
func (d *Dataset) Head(n int) []SleepRecord {
	if n > d.Len() {
		n = d.Len()
	}
	return d.Records[:n]
}
