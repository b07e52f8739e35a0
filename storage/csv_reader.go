package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

const (
	byteOrderMark = "\ufeff"
	// indexColumn is the name given to a header-less leading column, the
	// usual leftover of a dataframe written with its index.
	indexColumn = "Unnamed: 0"
)

// ErrMissingColumns is returned when the file lacks one of the required headers.
var ErrMissingColumns = errors.New("missing required columns")

// CSVReader loads a delimited file into a RawTable.
type CSVReader struct {
	logger    *utils.Logger
	delimiter rune
}

// NewCSVReader creates a comma-delimited reader.
func NewCSVReader(logger *utils.Logger) *CSVReader {
	return &CSVReader{logger: logger, delimiter: ','}
}

// Read opens path and parses it. The file is closed before Read returns.
func (r *CSVReader) Read(path string) (*models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	table, err := r.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", path, err)
	}

	r.logger.Info("[loader] Read %d rows × %d columns from %s", len(table.Rows), len(table.Columns), path)
	return table, nil
}

// Parse reads a whole table from src. A leading byte-order mark is consumed
// before the CSV parser sees the stream.
func (r *CSVReader) Parse(src io.Reader) (*models.RawTable, error) {
	decoded := transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(bufio.NewReader(decoded))
	cr.Comma = r.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = NormaliseHeader(h, i)
	}

	keep := make([]int, 0, len(columns))
	for i, c := range columns {
		if c == indexColumn {
			r.logger.Debug("[loader] Dropping index column at position %d", i)
			continue
		}
		keep = append(keep, i)
	}

	table := &models.RawTable{Columns: make([]string, 0, len(keep))}
	for _, i := range keep {
		table.Columns = append(table.Columns, columns[i])
	}

	if missing := missingColumns(table.Columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(record))
		}

		row := make([]string, len(keep))
		for j, i := range keep {
			if i < len(record) {
				row[j] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// NormaliseHeader strips byte-order marks and surrounding whitespace from a
// header cell. An empty header is named after its position the same way
// dataframe tools name unnamed columns.
func NormaliseHeader(raw string, position int) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, byteOrderMark, ""))
	if name == "" {
		return fmt.Sprintf("Unnamed: %d", position)
	}
	return name
}

func missingColumns(columns []string) []string {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, want := range models.RequiredColumns {
		if _, ok := present[want]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
