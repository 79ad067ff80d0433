package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_BinsCoverRange(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v\n0\n1\n2\n3\n4\n5\n6\n7\n8\n10\n")

	resp, err := svc.Histogram(ds, "v", 5)
	require.NoError(t, err)

	require.Len(t, resp.Bins, 5)
	assert.Equal(t, 10, resp.Count)
	assert.Equal(t, 0.0, resp.Min)
	assert.Equal(t, 10.0, resp.Max)
	assert.Equal(t, 0.0, resp.Bins[0].Start)
	assert.Equal(t, 10.0, resp.Bins[4].End)

	total := 0
	for _, b := range resp.Bins {
		total += b.Count
	}
	assert.Equal(t, resp.Count, total, "every value lands in exactly one bin")

	// The last bin holds 8 and the maximum 10, which is included rather
	// than dropped past the edge.
	assert.Equal(t, 2, resp.Bins[4].Count)
}

func TestHistogram_SkipsMissing(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v\n1\n\n3\n")

	resp, err := svc.Histogram(ds, "v", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Count)
	total := 0
	for _, b := range resp.Bins {
		total += b.Count
	}
	assert.Equal(t, 2, total)
}

func TestHistogram_ZeroWidthRange(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v\n7\n7\n7\n")

	resp, err := svc.Histogram(ds, "v", 10)
	require.NoError(t, err)

	require.Len(t, resp.Bins, 1, "identical values collapse to one bin")
	assert.Equal(t, 7.0, resp.Bins[0].Start)
	assert.Equal(t, 7.0, resp.Bins[0].End)
	assert.Equal(t, 3, resp.Bins[0].Count)
	assert.Equal(t, 0.0, resp.StdDev)
}

func TestHistogram_EmptyColumn(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v,w\n,1\n,2\n")

	resp, err := svc.Histogram(ds, "v", 10)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Bins)
}

func TestHistogram_BinClampAndDefault(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v\n0\n100\n")

	resp, err := svc.Histogram(ds, "v", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Bins, defaultHistogramBins)

	resp, err = svc.Histogram(ds, "v", 5000)
	require.NoError(t, err)
	assert.Len(t, resp.Bins, maxHistogramBins)
}

func TestHistogram_Errors(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v,label\n1,a\n2,b\n")

	_, err := svc.Histogram(ds, "nope", 10)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = svc.Histogram(ds, "label", 10)
	assert.ErrorIs(t, err, ErrColumnNotNumeric)
}

func TestBoxPlot_Grouped(t *testing.T) {
	svc := NewService()
	// south appears first in the data, so it leads the group order.
	ds := mustParse(t, "region,value\nsouth,1\nnorth,10\nsouth,2\nnorth,20\nsouth,3\nnorth,30\nsouth,4\nsouth,5\n")

	resp, err := svc.BoxPlot(ds, "value", "region")
	require.NoError(t, err)

	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "south", resp.Groups[0].Label, "first appearance order")
	assert.Equal(t, "north", resp.Groups[1].Label)
	assert.False(t, resp.Truncated)

	south := resp.Groups[0]
	assert.Equal(t, 5, south.Count)
	assert.Equal(t, 1.0, south.Min)
	assert.Equal(t, 2.0, south.Q1)
	assert.Equal(t, 3.0, south.Median)
	assert.Equal(t, 4.0, south.Q3)
	assert.Equal(t, 5.0, south.Max)
	assert.Equal(t, 3.0, south.Mean)
	assert.Equal(t, 0, south.Outliers)
	assert.Equal(t, 1.0, south.WhiskerLow, "no outliers, whiskers touch min and max")
	assert.Equal(t, 5.0, south.WhiskerHigh)
}

func TestBoxPlot_OutliersAndWhiskers(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "g,v\na,1\na,2\na,3\na,4\na,5\na,100\n")

	resp, err := svc.BoxPlot(ds, "v", "g")
	require.NoError(t, err)

	g := resp.Groups[0]
	// q1=2.25, q3=4.75, iqr=2.5: fences at -1.5 and 8.5, so 100 is the
	// single outlier and the upper whisker stops at 5.
	assert.Equal(t, 1, g.Outliers)
	assert.Equal(t, 5.0, g.WhiskerHigh)
	assert.Equal(t, 1.0, g.WhiskerLow)
	assert.Equal(t, 100.0, g.Max, "max still reports the raw extreme")
}

func TestBoxPlot_Ungrouped(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "v\n1\n2\n3\n4\n5\n")

	resp, err := svc.BoxPlot(ds, "v", "")
	require.NoError(t, err)

	require.Len(t, resp.Groups, 1)
	assert.Equal(t, "all", resp.Groups[0].Label)
	assert.Equal(t, 3.0, resp.Groups[0].Median)
	assert.Empty(t, resp.CategoryColumn)
}

func TestBoxPlot_SkipsMissingEitherSide(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "g,v\na,1\na,\n,5\nb,2\n")

	resp, err := svc.BoxPlot(ds, "v", "g")
	require.NoError(t, err)

	require.Len(t, resp.Groups, 2)
	assert.Equal(t, 1, resp.Groups[0].Count, "missing numeric cell drops the row")
	assert.Equal(t, 1, resp.Groups[1].Count, "missing category cell drops the row")
}

func TestBoxPlot_TruncatesGroups(t *testing.T) {
	svc := NewService()

	var sb strings.Builder
	sb.WriteString("g,v\n")
	for i := 0; i < maxBoxGroups+10; i++ {
		fmt.Fprintf(&sb, "g%03d,%d\n", i, i)
	}
	ds := mustParse(t, sb.String())

	resp, err := svc.BoxPlot(ds, "v", "g")
	require.NoError(t, err)

	assert.Len(t, resp.Groups, maxBoxGroups)
	assert.True(t, resp.Truncated)
	assert.Equal(t, "g000", resp.Groups[0].Label, "kept groups are the earliest seen")
}

func TestBoxPlot_Errors(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "g,v\na,1\nb,2\n")

	_, err := svc.BoxPlot(ds, "nope", "g")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = svc.BoxPlot(ds, "v", "nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = svc.BoxPlot(ds, "v", "v")
	assert.ErrorIs(t, err, ErrColumnNotCategorical)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, quantile(sorted, 0))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.Equal(t, 2.5, quantile(sorted, 0.5), "even count interpolates the middle")
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-12)

	assert.Equal(t, 3.0, quantile([]float64{1, 3, 5}, 0.5), "odd count hits the middle value")
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}
