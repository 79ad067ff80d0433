package analysis

import "errors"

// Advisory conditions. These mark empty results the frontend renders
// as a notice; they never terminate a session.
var (
	// ErrNotEnoughNumericColumns means a correlation view was requested
	// with fewer than two numeric columns.
	ErrNotEnoughNumericColumns = errors.New("need at least 2 numeric columns")

	// ErrNoTemporalColumn means no temporal column exists even after
	// the text-to-temporal fallback ran.
	ErrNoTemporalColumn = errors.New("no temporal columns available")

	// ErrNoCategoricalColumns means a box-plot view has no categorical
	// column to group by.
	ErrNoCategoricalColumns = errors.New("no categorical columns found")
)

// Request errors. These are caller mistakes against the current
// dataset and map to a 400 at the HTTP boundary.
var (
	ErrColumnNotFound       = errors.New("column not found")
	ErrColumnNotNumeric     = errors.New("column is not numeric")
	ErrColumnNotTemporal    = errors.New("column is not temporal")
	ErrColumnNotCategorical = errors.New("column is not categorical")
	ErrNotEnoughValues      = errors.New("not enough overlapping values")
	ErrBadFrequency         = errors.New("invalid resample frequency")
	ErrBadOperator          = errors.New("unknown filter operator")
)
