package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

// DateLayout is the day-month-year layout of the Date column. Day and month
// may be written with one or two digits; the year always has four.
const DateLayout = "2-1-2006"

// Cleaner transforms a RawTable into a typed, filtered Dataset.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean coerces every row and keeps only those with a valid Date and
// SleepHours. Surviving rows keep their file order and are re-indexed from 0.
func (c *Cleaner) Clean(raw *models.RawTable) *models.Dataset {
	ds := &models.Dataset{Records: make([]models.SleepRecord, 0, len(raw.Rows))}

	for i := range raw.Rows {
		row := ParseRow(raw, i)
		if !row.Date.Valid || !row.SleepHours.Valid {
			c.logger.Debug("[cleaner] Dropping row %d: date=%q sleep=%q",
				i, raw.Cell(i, models.ColDate), raw.Cell(i, models.ColSleepHours))
			continue
		}

		ds.Records = append(ds.Records, models.SleepRecord{
			Index:      len(ds.Records),
			Date:       row.Date.Time,
			SleepHours: row.SleepHours.Value,
			ScreenTime: row.ScreenTime,
			Mood:       row.Mood,
			Energy:     row.Energy,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		len(raw.Rows), ds.Len(), len(raw.Rows)-ds.Len())
	return ds
}

// ParseRow applies per-column coercion to row i of raw.
func ParseRow(raw *models.RawTable, i int) models.ParsedRow {
	return models.ParsedRow{
		Date:       ParseDate(raw.Cell(i, models.ColDate)),
		SleepHours: ParseMeasure(raw.Cell(i, models.ColSleepHours)),
		ScreenTime: ParseMeasure(raw.Cell(i, models.ColScreenTime)),
		Mood:       ParseMeasure(raw.Cell(i, models.ColMood)),
		Energy:     ParseMeasure(raw.Cell(i, models.ColEnergy)),
	}
}

// ParseDate parses a DD-MM-YYYY cell. Anything else, including impossible
// dates such as 31-13-2024, yields an invalid result.
func ParseDate(raw string) models.DateResult {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return models.DateResult{}
	}
	return models.DateResult{Time: t, Valid: true}
}

// ParseMeasure parses a real number, returning Missing for empty or
// non-numeric text and for NaN.
func ParseMeasure(raw string) models.Measure {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return models.Missing
	}
	return models.Present(v)
}
