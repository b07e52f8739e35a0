package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-dashboard/models"
	"sleep-dashboard/storage"
	"sleep-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func rawTable(rows ...[]string) *models.RawTable {
	return &models.RawTable{
		Columns: []string{"Date", "SleepHours", "ScreenTime", "Mood", "Energy"},
		Rows:    rows,
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
		want  time.Time
	}{
		{"01-02-2024", true, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"1-2-2024", true, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{" 15-06-2023 ", true, time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"29-02-2024", true, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{"31-13-2024", false, time.Time{}},
		{"30-02-2024", false, time.Time{}},
		{"2024-01-01", false, time.Time{}},
		{"01/01/2024", false, time.Time{}},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}

	for _, tt := range tests {
		got := ParseDate(tt.raw)
		assert.Equal(t, tt.valid, got.Valid, "ParseDate(%q).Valid", tt.raw)
		if tt.valid {
			assert.True(t, tt.want.Equal(got.Time), "ParseDate(%q) = %v; want %v", tt.raw, got.Time, tt.want)
		}
	}
}

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Measure
	}{
		{"7", models.Present(7)},
		{"6.75", models.Present(6.75)},
		{" 8.5 ", models.Present(8.5)},
		{"-1", models.Present(-1)},
		{"", models.Missing},
		{"NaN", models.Missing},
		{"n/a", models.Missing},
		{"seven", models.Missing},
		{"7h", models.Missing},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMeasure(tt.raw), "ParseMeasure(%q)", tt.raw)
	}
}

func TestCleanerDropsRowsMissingDateOrSleep(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := rawTable(
		[]string{"01-01-2024", "7", "3", "4", "3"},
		[]string{"31-13-2024", "8", "2", "5", "4"},   // invalid month
		[]string{"02-01-2024", "", "5", "2", "2"},    // no sleep
		[]string{"03-01-2024", "abc", "1", "3", "3"}, // non-numeric sleep
		[]string{"04-01-2024", "6.5", "", "x", "4"},  // other fields may be missing
	)

	ds := c.Clean(raw)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 7.0, ds.Records[0].SleepHours)
	assert.Equal(t, 6.5, ds.Records[1].SleepHours)
	assert.False(t, ds.Records[1].ScreenTime.Valid)
	assert.False(t, ds.Records[1].Mood.Valid)
	assert.Equal(t, models.Present(4), ds.Records[1].Energy)
}

func TestCleanerSurvivorCount(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := rawTable(
		[]string{"01-01-2024", "7", "", "", ""},
		[]string{"bad", "7", "", "", ""},
		[]string{"02-01-2024", "bad", "", "", ""},
		[]string{"bad", "bad", "", "", ""},
		[]string{"03-01-2024", "8", "", "", ""},
	)

	failing := 0
	for i := range raw.Rows {
		row := ParseRow(raw, i)
		if !row.Date.Valid || !row.SleepHours.Valid {
			failing++
		}
	}

	ds := c.Clean(raw)
	assert.Equal(t, len(raw.Rows)-failing, ds.Len())
	assert.Equal(t, 2, ds.Len())
}

func TestCleanerReindexesAndKeepsOrder(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := rawTable(
		[]string{"05-01-2024", "7", "1", "1", "1"},
		[]string{"bad", "7", "1", "1", "1"},
		[]string{"01-01-2024", "6", "1", "1", "1"},
		[]string{"01-01-2024", "9", "1", "1", "1"}, // duplicate date is kept
	)

	ds := c.Clean(raw)

	require.Equal(t, 3, ds.Len())
	for i, r := range ds.Records {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, []float64{7, 6, 9}, ds.Column(models.ColSleepHours))
	assert.Equal(t, 5, ds.Records[0].Date.Day())
}

func TestCleanerEmptyInput(t *testing.T) {
	c := NewCleaner(newTestLogger())
	ds := c.Clean(rawTable())
	assert.Equal(t, 0, ds.Len())
}

func TestLoadAndCleanIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sleepdata.csv")
	content := "\ufeffDate,SleepHours,ScreenTime,Mood,Energy\n" +
		"01-01-2024,7,3,4,3\n" +
		"02-01-2024,,2,3,3\n" +
		"03-01-2024,6.5,n/a,2,\n" +
		"31-13-2024,8,1,5,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reader := storage.NewCSVReader(newTestLogger())
	c := NewCleaner(newTestLogger())

	run := func() *models.Dataset {
		raw, err := reader.Read(path)
		require.NoError(t, err)
		return c.Clean(raw)
	}

	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Len())
}
