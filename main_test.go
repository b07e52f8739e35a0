package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sleep-dashboard/storage"
	"sleep-dashboard/utils"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Sleepdata.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndReport(t *testing.T) {
	path := writeCSV(t, "Date,SleepHours,ScreenTime,Mood,Energy\n01-01-2024,7,3,4,3\n02-01-2024,8,2,5,4\n")

	var out bytes.Buffer
	ds, summary, err := loadAndReport(storage.NewCSVReader(utils.Discard()), path, &out, utils.Discard())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2, summary.Rows)
	assert.Contains(t, out.String(), "===== SUMMARY STATISTICS =====")
}

func TestLoadAndReportPrintsBeforeFailingOnEmptyTable(t *testing.T) {
	path := writeCSV(t, "Date,SleepHours,ScreenTime,Mood,Energy\n31-13-2024,7,3,4,3\n01-01-2024,,2,5,4\n")

	var out bytes.Buffer
	ds, _, err := loadAndReport(storage.NewCSVReader(utils.Discard()), path, &out, utils.Discard())

	require.ErrorIs(t, err, errNoRows)
	assert.Contains(t, err.Error(), "all 2 rows dropped")
	assert.Nil(t, ds)
	assert.Contains(t, out.String(), "===== CSV LOADED SUCCESSFULLY =====")
	assert.Contains(t, out.String(), "Columns: [Date, SleepHours, ScreenTime, Mood, Energy]")
	assert.Contains(t, out.String(), "Empty dataset")
}

func TestLoadAndReportMissingFile(t *testing.T) {
	var out bytes.Buffer
	_, _, err := loadAndReport(storage.NewCSVReader(utils.Discard()), filepath.Join(t.TempDir(), "nope.csv"), &out, utils.Discard())

	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String())
}
