package analysis

import (
	"fmt"
	"sort"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

const (
	defaultHistogramBins = 10
	maxHistogramBins     = 100
	maxBoxGroups         = 50
)

// Histogram bins a numeric column into equal-width ranges over
// [min, max]. Every bin is half-open except the last, which includes
// the maximum. A column whose values are all identical collapses to a
// single bin; a column with no values yields no bins at all.
func (s *Service) Histogram(d *dataset.Dataset, column string, bins int) (models.HistogramResponse, error) {
	c, err := numericColumn(d, column)
	if err != nil {
		return models.HistogramResponse{}, err
	}
	if bins <= 0 {
		bins = defaultHistogramBins
	}
	if bins > maxHistogramBins {
		bins = maxHistogramBins
	}

	values := c.ValidFloats()
	resp := models.HistogramResponse{Column: c.Name, Count: len(values)}
	if len(values) == 0 {
		return resp, nil
	}

	mn, mx, mean, std := describe(values)
	resp.Min, resp.Max, resp.Mean, resp.StdDev = mn, mx, mean, std

	width := (mx - mn) / float64(bins)
	if width == 0 {
		resp.Bins = []models.HistogramBin{{Start: mn, End: mx, Count: len(values)}}
		return resp, nil
	}

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - mn) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	resp.Bins = make([]models.HistogramBin, bins)
	for i, n := range counts {
		start := mn + float64(i)*width
		end := start + width
		if i == bins-1 {
			end = mx
		}
		resp.Bins[i] = models.HistogramBin{Start: start, End: end, Count: n}
	}
	return resp, nil
}

// BoxPlot summarizes a numeric column per category: five-number
// summary, mean, Tukey whiskers at the outermost data within 1.5×IQR
// of the quartiles, and the outlier count beyond them. Groups keep the
// category's first-appearance order, capped at 50 with a truncated
// flag. An empty categoryCol gives one ungrouped box over the whole
// column. Rows missing either cell contribute nothing.
func (s *Service) BoxPlot(d *dataset.Dataset, numericCol, categoryCol string) (models.BoxPlotResponse, error) {
	nc, err := numericColumn(d, numericCol)
	if err != nil {
		return models.BoxPlotResponse{}, err
	}

	resp := models.BoxPlotResponse{NumericColumn: nc.Name, CategoryColumn: categoryCol}

	if categoryCol == "" {
		if g, ok := buildBoxGroup("all", nc.ValidFloats()); ok {
			resp.Groups = []models.BoxGroup{g}
		}
		return resp, nil
	}

	cc := d.Column(categoryCol)
	if cc == nil {
		return models.BoxPlotResponse{}, fmt.Errorf("%w: %q", ErrColumnNotFound, categoryCol)
	}
	if cc.Kind != dataset.KindText {
		return models.BoxPlotResponse{}, fmt.Errorf("%w: %q is %s", ErrColumnNotCategorical, categoryCol, cc.Kind)
	}

	order := []string{}
	grouped := map[string][]float64{}
	for row := 0; row < d.RowCount(); row++ {
		if cc.IsMissing(row) {
			continue
		}
		v, ok := nc.FloatAt(row)
		if !ok {
			continue
		}
		key := cc.Cells[row]
		if _, seen := grouped[key]; !seen {
			if len(order) == maxBoxGroups {
				resp.Truncated = true
				continue
			}
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], v)
	}

	for _, key := range order {
		if g, ok := buildBoxGroup(key, grouped[key]); ok {
			resp.Groups = append(resp.Groups, g)
		}
	}
	return resp, nil
}

func buildBoxGroup(label string, values []float64) (models.BoxGroup, bool) {
	if len(values) == 0 {
		return models.BoxGroup{}, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	median := quantile(sorted, 0.5)
	q3 := quantile(sorted, 0.75)
	loFence := q1 - 1.5*(q3-q1)
	hiFence := q3 + 1.5*(q3-q1)

	sum := 0.0
	outliers := 0
	for _, v := range sorted {
		sum += v
		if v < loFence || v > hiFence {
			outliers++
		}
	}

	// Whiskers reach the outermost data still inside the fences. Both
	// loops must find a value: min <= q3 <= hiFence and max >= q1 >= loFence.
	whiskerLow := sorted[0]
	for _, v := range sorted {
		if v >= loFence {
			whiskerLow = v
			break
		}
	}
	whiskerHigh := sorted[len(sorted)-1]
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hiFence {
			whiskerHigh = sorted[i]
			break
		}
	}

	return models.BoxGroup{
		Label:       label,
		Count:       len(sorted),
		Min:         sorted[0],
		Q1:          q1,
		Median:      median,
		Q3:          q3,
		Max:         sorted[len(sorted)-1],
		Mean:        sum / float64(len(sorted)),
		WhiskerLow:  whiskerLow,
		WhiskerHigh: whiskerHigh,
		Outliers:    outliers,
	}, true
}

// quantile interpolates linearly between the order statistics of an
// already sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
