package models

import "time"

// ClassificationResponse feeds the frontend's selectable option lists.
// The per-class slices keep the dataset's column order.
type ClassificationResponse struct {
	Classes     map[string]string `json:"classes"`
	Numeric     []string          `json:"numeric"`
	Temporal    []string          `json:"temporal"`
	Categorical []string          `json:"categorical"`
	Other       []string          `json:"other"`
}

// SummaryResult is the dataset overview card
type SummaryResult struct {
	Rows           int      `json:"rows"`
	Columns        int      `json:"columns"`
	ColumnNames    []string `json:"column_names"`
	MissingValues  int      `json:"missing_values"`
	NumericColumns int      `json:"numeric_columns"`
}

// ValueCount is one entry of a categorical top-values list
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile holds quality metrics for a single column
type ColumnProfile struct {
	Name            string       `json:"name"`
	Kind            string       `json:"kind"`
	TotalRows       int          `json:"total_rows"`
	MissingCount    int          `json:"missing_count"`
	NullRate        float64      `json:"null_rate"`
	DistinctCount   int          `json:"distinct_count"`
	UniquenessRatio float64      `json:"uniqueness_ratio"`
	Entropy         float64      `json:"entropy"`
	IsPrimaryKey    bool         `json:"is_primary_key"`
	Min             *float64     `json:"min,omitempty"`
	Max             *float64     `json:"max,omitempty"`
	Mean            *float64     `json:"mean,omitempty"`
	StdDev          *float64     `json:"std_dev,omitempty"`
	MinTime         *time.Time   `json:"min_time,omitempty"`
	MaxTime         *time.Time   `json:"max_time,omitempty"`
	TopValues       []ValueCount `json:"top_values,omitempty"`
}

// ProfileResponse is returned by the /profile endpoint
type ProfileResponse struct {
	Columns []ColumnProfile `json:"columns"`
}

// CorrelationMatrix is the pairwise Pearson matrix over numeric
// columns: Values[i][j] correlates Columns[i] with Columns[j],
// symmetric with a unit diagonal
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// CorrelationPair is one unordered column pair with its correlation
type CorrelationPair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Correlation float64 `json:"correlation"`
}

// PairDetail is the drill-down view for a single column pair
type PairDetail struct {
	ColumnX    string  `json:"column_x"`
	ColumnY    string  `json:"column_y"`
	Pearson    float64 `json:"pearson_correlation"`
	Spearman   float64 `json:"spearman_correlation"`
	Strength   string  `json:"strength"`
	SampleSize int     `json:"sample_size"`
}

// ResamplePoint is one non-empty bucket of a resampled series
type ResamplePoint struct {
	Period string    `json:"period"`
	Start  time.Time `json:"start"`
	Mean   float64   `json:"mean"`
	Count  int       `json:"count"`
}

// ResampleResponse is the time-series view payload. ConvertedColumns
// names text columns upgraded to temporal while serving this request,
// so the frontend can refresh its option lists.
type ResampleResponse struct {
	TemporalColumn   string          `json:"temporal_column"`
	NumericColumn    string          `json:"numeric_column"`
	Frequency        string          `json:"frequency"`
	Points           []ResamplePoint `json:"points"`
	ConvertedColumns []string        `json:"converted_columns,omitempty"`
}

// HistogramBin is a half-open value range [Start, End) except for the
// last bin, which includes its upper edge
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// HistogramResponse is the distribution view payload
type HistogramResponse struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
	Count  int            `json:"count"`
	Mean   float64        `json:"mean"`
	StdDev float64        `json:"std_dev"`
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
}

// BoxGroup is the five-number summary of one category
type BoxGroup struct {
	Label       string  `json:"label"`
	Count       int     `json:"count"`
	Min         float64 `json:"min"`
	Q1          float64 `json:"q1"`
	Median      float64 `json:"median"`
	Q3          float64 `json:"q3"`
	Max         float64 `json:"max"`
	Mean        float64 `json:"mean"`
	WhiskerLow  float64 `json:"whisker_low"`
	WhiskerHigh float64 `json:"whisker_high"`
	Outliers    int     `json:"outliers"`
}

// BoxPlotResponse is the box-plot view payload
type BoxPlotResponse struct {
	NumericColumn  string     `json:"numeric_column"`
	CategoryColumn string     `json:"category_column"`
	Groups         []BoxGroup `json:"groups"`
	Truncated      bool       `json:"truncated,omitempty"`
}

// ScatterPoint is one pairwise-complete observation
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterResponse is the scatter view payload
type ScatterResponse struct {
	XColumn    string         `json:"x_column"`
	YColumn    string         `json:"y_column"`
	Points     []ScatterPoint `json:"points"`
	SampleSize int            `json:"sample_size"`
	Truncated  bool           `json:"truncated,omitempty"`
}
