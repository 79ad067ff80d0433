package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/datadeck-io/datadeck/internal/dataset"
)

// fetchRows runs the table query and scans every row into generic
// values. The table name must already be validated against the
// source's table list; see validateTable.
func fetchRows(db *sql.DB, table string, limit int) ([]string, [][]interface{}, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit)

	rows, err := db.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var scanned [][]interface{}
	for rows.Next() {
		// Prepare a slice of interface{} to hold values
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}
		scanned = append(scanned, values)
	}

	return columns, scanned, rows.Err()
}

// datasetFromRows builds typed dataset columns out of driver-scanned
// values. Kinds follow what the driver handed back: a column of time
// values becomes temporal, a column of numbers numeric, NULL is the
// missing cell. A column has to be uniform (NULLs aside) to earn a
// typed kind; anything mixed falls back to text.
func datasetFromRows(names []string, rows [][]interface{}) (*dataset.Dataset, error) {
	columns := make([]*dataset.Column, len(names))
	for j, name := range names {
		columns[j] = buildColumn(name, rows, j)
	}
	return dataset.New(columns)
}

func buildColumn(name string, rows [][]interface{}, j int) *dataset.Column {
	n := len(rows)
	cells := make([]string, n)
	floats := make([]float64, n)
	times := make([]time.Time, n)
	bools := make([]bool, n)

	nonNull, numeric, temporal, boolean := 0, 0, 0, 0
	for i, row := range rows {
		val := row[j]

		// Handle byte slices (common for strings in DB drivers). The
		// MySQL text protocol even delivers integer columns this way,
		// so the string branch below re-parses numbers.
		if b, ok := val.([]byte); ok {
			val = string(b)
		}

		switch v := val.(type) {
		case nil:
			continue
		case time.Time:
			cells[i] = v.Format(time.RFC3339)
			times[i] = v
			temporal++
		case int64:
			cells[i] = strconv.FormatInt(v, 10)
			floats[i] = float64(v)
			numeric++
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				// Non-finite values have no place in the stats;
				// keep the cell missing.
				continue
			}
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
			floats[i] = v
			numeric++
		case bool:
			cells[i] = strconv.FormatBool(v)
			bools[i] = v
			boolean++
		case string:
			if v == "" {
				// Indistinguishable from the missing marker.
				continue
			}
			cells[i] = v
			if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				floats[i] = f
				numeric++
			}
		default:
			cells[i] = fmt.Sprintf("%v", v)
		}
		nonNull++
	}

	col := &dataset.Column{Name: name, Cells: cells}
	switch {
	case nonNull > 0 && temporal == nonNull:
		col.Kind = dataset.KindTemporal
		col.Times = times
	case numeric == nonNull:
		// Includes the all-NULL column, which loads as numeric just
		// like an all-missing CSV column.
		col.Kind = dataset.KindNumeric
		col.Floats = floats
	case boolean == nonNull:
		col.Kind = dataset.KindBool
		col.Bools = bools
	default:
		col.Kind = dataset.KindText
	}
	return col
}
