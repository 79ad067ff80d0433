package dataset

import (
	"strings"
	"time"
)

// Layouts tried by the best-effort temporal parser, most specific
// first. US day ordering wins over EU for ambiguous slash dates.
var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// TryParseTemporal attempts to read a single cell as a date or
// timestamp. It returns false rather than an error: callers fold this
// over a whole column and a single failure keeps the column as text.
func TryParseTemporal(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tryTemporal parses every non-missing cell, all or nothing. Missing
// cells do not block a conversion; a column of only missing cells
// converts vacuously.
func (c *Column) tryTemporal() ([]time.Time, bool) {
	times := make([]time.Time, len(c.Cells))
	for i, cell := range c.Cells {
		if cell == "" {
			continue
		}
		t, ok := TryParseTemporal(cell)
		if !ok {
			return nil, false
		}
		times[i] = t
	}
	return times, true
}

// ConvertTextColumnsToTemporal scans text columns in stored order and
// upgrades every column whose non-missing cells all parse as temporal
// values. Columns with any unparsable cell are silently left as text.
// The upgrade is in place and one way: converted columns stop being
// text, so a second call finds nothing left to do. Raw cell text is
// retained. Returns the names of the converted columns.
//
// Callers invoke this only from the time-series path, and only when
// the dataset has no temporal column yet.
func (d *Dataset) ConvertTextColumnsToTemporal() []string {
	converted := []string{}
	for _, c := range d.Columns {
		if c.Kind != KindText {
			continue
		}
		times, ok := c.tryTemporal()
		if !ok {
			continue
		}
		c.Kind = KindTemporal
		c.Times = times
		converted = append(converted, c.Name)
	}
	return converted
}
