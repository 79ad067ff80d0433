package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

const (
	maxTopPairs      = 5
	maxScatterPoints = 10000
)

// pairAcc accumulates the sums needed for an exact Pearson correlation
// over the rows where both columns have a value.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (a *pairAcc) add(x, y float64) {
	a.n++
	a.sumX += x
	a.sumY += y
	a.sumXX += x * x
	a.sumYY += y * y
	a.sumXY += x * y
}

// r resolves the accumulator to a correlation in [-1, 1]. Pairs with
// fewer than two overlapping rows or a zero-variance side contribute 0.
func (a *pairAcc) r() float64 {
	if a.n < 2 {
		return 0
	}
	den := math.Sqrt((a.n*a.sumXX - a.sumX*a.sumX) * (a.n*a.sumYY - a.sumY*a.sumY))
	if den == 0 {
		return 0
	}
	r := (a.n*a.sumXY - a.sumX*a.sumY) / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Correlation computes the pairwise Pearson matrix over the numeric
// columns, with pairwise deletion: each pair uses exactly the rows
// where both columns are non-missing. The diagonal is exactly 1 and
// the matrix is symmetric by construction, each pair computed once and
// written to both cells. Fewer than two numeric columns is the
// not-enough-numeric advisory.
func (s *Service) Correlation(d *dataset.Dataset) (models.CorrelationMatrix, error) {
	numeric := d.NumericColumns()
	if len(numeric) < 2 {
		return models.CorrelationMatrix{}, ErrNotEnoughNumericColumns
	}

	names := make([]string, len(numeric))
	values := make([][]float64, len(numeric))
	for i, c := range numeric {
		names[i] = c.Name
		values[i] = make([]float64, len(numeric))
		values[i][i] = 1
	}

	rows := d.RowCount()
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			var acc pairAcc
			for row := 0; row < rows; row++ {
				x, okX := numeric[i].FloatAt(row)
				y, okY := numeric[j].FloatAt(row)
				if okX && okY {
					acc.add(x, y)
				}
			}
			r := acc.r()
			values[i][j] = r
			values[j][i] = r
		}
	}

	return models.CorrelationMatrix{Columns: names, Values: values}, nil
}

// TopCorrelations lists the strongest unordered pairs of the matrix:
// i < j in column order, sorted descending by the signed correlation,
// ties kept in first-appearance order, truncated to five. A matrix
// with fewer than two columns yields an empty list.
func (s *Service) TopCorrelations(m models.CorrelationMatrix) []models.CorrelationPair {
	pairs := []models.CorrelationPair{}
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			pairs = append(pairs, models.CorrelationPair{
				ColumnA:     m.Columns[i],
				ColumnB:     m.Columns[j],
				Correlation: m.Values[i][j],
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Correlation > pairs[j].Correlation
	})
	if len(pairs) > maxTopPairs {
		pairs = pairs[:maxTopPairs]
	}
	return pairs
}

// PairDetail is the drill-down for one column pair: Pearson, Spearman,
// overlap size and a strength label.
func (s *Service) PairDetail(d *dataset.Dataset, xCol, yCol string) (models.PairDetail, error) {
	x, err := numericColumn(d, xCol)
	if err != nil {
		return models.PairDetail{}, err
	}
	y, err := numericColumn(d, yCol)
	if err != nil {
		return models.PairDetail{}, err
	}

	xs, ys := pairwiseValues(d, x, y)
	if len(xs) < 2 {
		return models.PairDetail{}, fmt.Errorf("%w: %q and %q overlap on %d rows", ErrNotEnoughValues, xCol, yCol, len(xs))
	}

	r := pearson(xs, ys)
	return models.PairDetail{
		ColumnX:    x.Name,
		ColumnY:    y.Name,
		Pearson:    r,
		Spearman:   spearman(xs, ys),
		Strength:   strengthLabel(r),
		SampleSize: len(xs),
	}, nil
}

// Scatter returns the pairwise-complete points of two numeric columns,
// capped so very tall datasets do not flood the frontend.
func (s *Service) Scatter(d *dataset.Dataset, xCol, yCol string) (models.ScatterResponse, error) {
	x, err := numericColumn(d, xCol)
	if err != nil {
		return models.ScatterResponse{}, err
	}
	y, err := numericColumn(d, yCol)
	if err != nil {
		return models.ScatterResponse{}, err
	}

	resp := models.ScatterResponse{XColumn: x.Name, YColumn: y.Name, Points: []models.ScatterPoint{}}
	for row := 0; row < d.RowCount(); row++ {
		xv, okX := x.FloatAt(row)
		yv, okY := y.FloatAt(row)
		if !okX || !okY {
			continue
		}
		if len(resp.Points) == maxScatterPoints {
			resp.Truncated = true
			break
		}
		resp.Points = append(resp.Points, models.ScatterPoint{X: xv, Y: yv})
	}
	resp.SampleSize = len(resp.Points)
	return resp, nil
}

// numericColumn resolves a request column name to a numeric column.
func numericColumn(d *dataset.Dataset, name string) (*dataset.Column, error) {
	c := d.Column(name)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if c.Kind != dataset.KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrColumnNotNumeric, name, c.Kind)
	}
	return c, nil
}

// pairwiseValues aligns two columns over the rows where both hold a
// value.
func pairwiseValues(d *dataset.Dataset, x, y *dataset.Column) (xs, ys []float64) {
	for row := 0; row < d.RowCount(); row++ {
		xv, okX := x.FloatAt(row)
		yv, okY := y.FloatAt(row)
		if okX && okY {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return
}

func pearson(x, y []float64) float64 {
	var acc pairAcc
	for i := range x {
		acc.add(x[i], y[i])
	}
	return acc.r()
}

// spearman ranks both sides and correlates the ranks.
func spearman(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return pearson(computeRanks(x), computeRanks(y))
}

func computeRanks(vals []float64) []float64 {
	type indexedVal struct {
		val   float64
		index int
	}

	indexed := make([]indexedVal, len(vals))
	for i, v := range vals {
		indexed[i] = indexedVal{v, i}
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		return indexed[i].val < indexed[j].val
	})

	ranks := make([]float64, len(vals))
	for rank, iv := range indexed {
		ranks[iv.index] = float64(rank + 1)
	}
	return ranks
}

func strengthLabel(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "Strong"
	case abs >= 0.4:
		return "Moderate"
	case abs >= 0.2:
		return "Weak"
	}
	return "None"
}
