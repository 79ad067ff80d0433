// Package dataset holds the in-memory table model: named, typed columns
// with equal row counts, loaded from CSV or a database table. Cells keep
// the raw uploaded text so a dataset can be serialized back byte-for-byte;
// typed values live alongside in parallel slices.
package dataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoColumns is returned when a dataset would have no columns at all.
	ErrNoColumns = errors.New("dataset has no columns")

	// ErrRaggedColumns is returned when column lengths disagree.
	ErrRaggedColumns = errors.New("columns have unequal row counts")
)

// Kind is the stored representation of a column, decided once when the
// column is built. KindTemporal is only produced by database loads (the
// driver hands us time values) or by the text-to-temporal fallback.
type Kind int

const (
	KindNumeric Kind = iota
	KindTemporal
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTemporal:
		return "temporal"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Class is the semantic classification handed to the presentation layer
// to populate its option lists.
type Class string

const (
	ClassNumeric     Class = "numeric"
	ClassTemporal    Class = "temporal"
	ClassCategorical Class = "categorical"
	ClassOther       Class = "other"
)

// Column is one named column. Cells holds the raw cell text exactly as
// uploaded, with "" as the missing marker; Floats, Times and Bools are
// parallel slices that are only meaningful for the matching kind and
// only at rows where the cell is not missing.
type Column struct {
	Name   string
	Kind   Kind
	Cells  []string
	Floats []float64
	Times  []time.Time
	Bools  []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Cells) }

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool { return c.Cells[i] == "" }

// FloatAt returns the numeric value at row i, if there is one.
func (c *Column) FloatAt(i int) (float64, bool) {
	if c.Kind != KindNumeric || c.Cells[i] == "" {
		return 0, false
	}
	return c.Floats[i], true
}

// TimeAt returns the temporal value at row i, if there is one.
func (c *Column) TimeAt(i int) (time.Time, bool) {
	if c.Kind != KindTemporal || c.Cells[i] == "" {
		return time.Time{}, false
	}
	return c.Times[i], true
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell == "" {
			n++
		}
	}
	return n
}

// ValidFloats returns the non-missing numeric values in row order.
func (c *Column) ValidFloats() []float64 {
	values := []float64{}
	for i := range c.Cells {
		if v, ok := c.FloatAt(i); ok {
			values = append(values, v)
		}
	}
	return values
}

// Dataset is an ordered set of equally sized columns. It is owned by a
// single session and never shared; replacement on re-upload swaps the
// whole value. The only in-place mutation is the text-to-temporal
// upgrade in ConvertTextColumnsToTemporal.
type Dataset struct {
	Columns []*Column
}

// New builds a dataset from prepared columns, checking the equal-length
// invariant.
func New(columns []*Column) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	n := columns[0].Len()
	for _, c := range columns[1:] {
		if c.Len() != n {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, c.Name, c.Len(), n)
		}
	}
	return &Dataset{Columns: columns}, nil
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.Columns) }

// ColumnNames returns the column names in stored order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column with the given name, or nil.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// MissingCount returns the total number of missing cells across all
// columns.
func (d *Dataset) MissingCount() int {
	n := 0
	for _, c := range d.Columns {
		n += c.MissingCount()
	}
	return n
}

// NumericColumns returns the numeric columns in stored order.
func (d *Dataset) NumericColumns() []*Column {
	cols := []*Column{}
	for _, c := range d.Columns {
		if c.Kind == KindNumeric {
			cols = append(cols, c)
		}
	}
	return cols
}

// Classification maps every column to exactly one semantic class. The
// per-class name lists preserve the stored column order.
type Classification struct {
	Classes     map[string]Class
	Numeric     []string
	Temporal    []string
	Categorical []string
	Other       []string
}

// Classify derives the semantic classification from the column kinds.
// It is a pure function of the dataset's current state: numeric kinds
// classify as numeric, temporal as temporal, text as categorical and
// bool as other. Classify itself never converts a column; the temporal
// fallback is a separate, explicit step.
func (d *Dataset) Classify() Classification {
	cls := Classification{Classes: make(map[string]Class, len(d.Columns))}
	for _, c := range d.Columns {
		var class Class
		switch c.Kind {
		case KindNumeric:
			class = ClassNumeric
			cls.Numeric = append(cls.Numeric, c.Name)
		case KindTemporal:
			class = ClassTemporal
			cls.Temporal = append(cls.Temporal, c.Name)
		case KindText:
			class = ClassCategorical
			cls.Categorical = append(cls.Categorical, c.Name)
		default:
			class = ClassOther
			cls.Other = append(cls.Other, c.Name)
		}
		cls.Classes[c.Name] = class
	}
	return cls
}
