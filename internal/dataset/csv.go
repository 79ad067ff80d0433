package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Parse reads delimited text into a dataset. The first record is the
// header row; empty cells are missing values. Files that turn out to be
// semicolon-delimited are re-read with ';'. Short rows are padded with
// missing cells and long rows truncated to the header width, so the
// equal-length invariant always holds. Raw cell text is kept untouched
// so WriteCSV can reproduce it.
func Parse(data []byte) (*Dataset, error) {
	records, err := readRecords(data, ',')
	if err != nil {
		return nil, err
	}

	// A single wide header full of semicolons means we guessed the
	// delimiter wrong.
	if len(records) > 0 && len(records[0]) == 1 && strings.Contains(records[0][0], ";") {
		records, err = readRecords(data, ';')
		if err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: empty input")
	}

	headers := records[0]
	rows := records[1:]

	columns := make([]*Column, len(headers))
	for j, name := range headers {
		cells := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			}
		}
		columns[j] = buildColumn(name, cells)
	}

	return New(columns)
}

func readRecords(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true    // Allow bare quotes in non-quoted fields

	records := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate malformed rows past the header
			if len(records) > 0 {
				continue
			}
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// buildColumn decides the stored kind for a freshly parsed column. A
// column is numeric when every non-missing cell parses as a finite
// float (a column of only missing cells counts as numeric), bool when
// every non-missing cell is a true/false literal, text otherwise.
func buildColumn(name string, cells []string) *Column {
	floats := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			numeric = false
			break
		}
		floats[i] = f
	}
	if numeric {
		return &Column{Name: name, Kind: KindNumeric, Cells: cells, Floats: floats}
	}

	bools := make([]bool, len(cells))
	boolean := true
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		b, ok := parseBoolLiteral(cell)
		if !ok {
			boolean = false
			break
		}
		bools[i] = b
	}
	if boolean {
		return &Column{Name: name, Kind: KindBool, Cells: cells, Bools: bools}
	}

	return &Column{Name: name, Kind: KindText, Cells: cells}
}

func parseBoolLiteral(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// WriteCSV serializes the dataset back to comma-separated text: headers
// first, then every row's raw cells, with missing cells as the empty
// marker. Non-missing cells round-trip byte-for-byte because Cells is
// never rewritten, not even by the temporal fallback.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(d.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(d.Columns))
	for i := 0; i < d.RowCount(); i++ {
		for j, c := range d.Columns {
			record[j] = c.Cells[i]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
