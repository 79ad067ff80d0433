// Package analysis builds the derived views the dashboard renders:
// summary and profile cards, the correlation matrix and its top pairs,
// resampled time series, histograms, box plots, scatter data and row
// filters. Every view is a synchronous pass over the session's dataset;
// nothing here caches between requests.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

const (
	defaultPreviewRows = 10
	maxPreviewRows     = 100
	topValueCount      = 5
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Summary returns the dataset overview: shape, column names, total
// missing cells and the numeric column count. It always succeeds on a
// valid dataset.
func (s *Service) Summary(d *dataset.Dataset) models.SummaryResult {
	cls := d.Classify()
	return models.SummaryResult{
		Rows:           d.RowCount(),
		Columns:        d.ColumnCount(),
		ColumnNames:    d.ColumnNames(),
		MissingValues:  d.MissingCount(),
		NumericColumns: len(cls.Numeric),
	}
}

// Classification exposes the semantic column classes for the
// frontend's option lists.
func (s *Service) Classification(d *dataset.Dataset) models.ClassificationResponse {
	cls := d.Classify()
	classes := make(map[string]string, len(cls.Classes))
	for name, class := range cls.Classes {
		classes[name] = string(class)
	}
	return models.ClassificationResponse{
		Classes:     classes,
		Numeric:     cls.Numeric,
		Temporal:    cls.Temporal,
		Categorical: cls.Categorical,
		Other:       cls.Other,
	}
}

// Preview returns the first rows of the dataset as header-keyed
// records.
func (s *Service) Preview(d *dataset.Dataset, limit int) models.PreviewResponse {
	if limit <= 0 {
		limit = defaultPreviewRows
	}
	if limit > maxPreviewRows {
		limit = maxPreviewRows
	}
	if limit > d.RowCount() {
		limit = d.RowCount()
	}

	rows := make([]map[string]interface{}, limit)
	for i := 0; i < limit; i++ {
		row := make(map[string]interface{}, d.ColumnCount())
		for _, c := range d.Columns {
			row[c.Name] = cellValue(c, i)
		}
		rows[i] = row
	}

	return models.PreviewResponse{
		Columns: d.ColumnNames(),
		Rows:    rows,
		Total:   d.RowCount(),
	}
}

// cellValue renders one cell for JSON: missing becomes null, numeric
// and bool keep their types, everything else stays raw text.
func cellValue(c *dataset.Column, i int) interface{} {
	if c.IsMissing(i) {
		return nil
	}
	switch c.Kind {
	case dataset.KindNumeric:
		return c.Floats[i]
	case dataset.KindBool:
		return c.Bools[i]
	default:
		return c.Cells[i]
	}
}

// Profile computes per-column quality metrics: missingness, distinct
// counts, Shannon entropy and kind-specific descriptive stats.
func (s *Service) Profile(d *dataset.Dataset) models.ProfileResponse {
	profiles := make([]models.ColumnProfile, len(d.Columns))
	for i, c := range d.Columns {
		profiles[i] = profileColumn(c)
	}
	return models.ProfileResponse{Columns: profiles}
}

func profileColumn(c *dataset.Column) models.ColumnProfile {
	p := models.ColumnProfile{
		Name:         c.Name,
		Kind:         c.Kind.String(),
		TotalRows:    c.Len(),
		MissingCount: c.MissingCount(),
	}
	if p.TotalRows > 0 {
		p.NullRate = float64(p.MissingCount) / float64(p.TotalRows)
	}

	counts := make(map[string]int)
	nonMissing := 0
	for _, cell := range c.Cells {
		if cell == "" {
			continue
		}
		nonMissing++
		counts[cell]++
	}
	p.DistinctCount = len(counts)
	if nonMissing > 0 {
		p.UniquenessRatio = float64(p.DistinctCount) / float64(nonMissing)
	}
	p.Entropy = shannonEntropy(counts, nonMissing)

	// High uniqueness and low null rate suggest a key column
	p.IsPrimaryKey = p.UniquenessRatio > 0.95 && p.NullRate < 0.05

	switch c.Kind {
	case dataset.KindNumeric:
		values := c.ValidFloats()
		if len(values) > 0 {
			mn, mx, mean, std := describe(values)
			p.Min, p.Max, p.Mean, p.StdDev = &mn, &mx, &mean, &std
		}
	case dataset.KindTemporal:
		if mn, mx, ok := timeRange(c); ok {
			p.MinTime, p.MaxTime = &mn, &mx
		}
	case dataset.KindText:
		p.TopValues = topValues(c.Cells, counts, topValueCount)
	}

	return p
}

// shannonEntropy measures value diversity in bits.
func shannonEntropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, count := range counts {
		if count > 0 {
			p := float64(count) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// describe computes min, max, mean and sample standard deviation in a
// single pass (Welford update for the variance).
func describe(values []float64) (min, max, mean, std float64) {
	min, max = values[0], values[0]
	var m, m2 float64
	for i, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		delta := v - m
		m += delta / float64(i+1)
		m2 += delta * (v - m)
	}
	mean = m
	if len(values) > 1 {
		std = math.Sqrt(m2 / float64(len(values)-1))
	}
	return
}

func timeRange(c *dataset.Column) (min, max time.Time, ok bool) {
	for i := 0; i < c.Len(); i++ {
		t, valid := c.TimeAt(i)
		if !valid {
			continue
		}
		if !ok {
			min, max, ok = t, t, true
			continue
		}
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return
}

// topValues returns the k most frequent values, ties kept in first
// appearance order.
func topValues(cells []string, counts map[string]int, k int) []models.ValueCount {
	seen := make(map[string]bool, len(counts))
	out := []models.ValueCount{}
	for _, cell := range cells {
		if cell == "" || seen[cell] {
			continue
		}
		seen[cell] = true
		out = append(out, models.ValueCount{Value: cell, Count: counts[cell]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
