package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadeck-io/datadeck/internal/dataset"
	"github.com/datadeck-io/datadeck/internal/models"
)

func mustParse(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(csv))
	require.NoError(t, err)
	return ds
}

func TestCorrelation_MatrixShape(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "a,b,c\n1,2,9\n2,4,7\n3,6,5\n4,8,2\n")

	m, err := svc.Correlation(ds)
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b", "c"}, m.Columns)
	require.Len(t, m.Values, 3)

	for i := range m.Values {
		assert.Equal(t, 1.0, m.Values[i][i], "diagonal is exactly 1")
		for j := range m.Values[i] {
			assert.Equal(t, m.Values[i][j], m.Values[j][i], "matrix is symmetric")
			assert.GreaterOrEqual(t, m.Values[i][j], -1.0)
			assert.LessOrEqual(t, m.Values[i][j], 1.0)
		}
	}

	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12, "a and b are perfectly linear")
	assert.Less(t, m.Values[0][2], 0.0, "a and c move in opposite directions")
}

func TestCorrelation_PairwiseDeletion(t *testing.T) {
	svc := NewService()
	// a~b overlaps on rows 1, 2 and 4; a~c on rows 2, 3 and 4. Both
	// overlaps are perfectly linear even though the full columns are not.
	ds := mustParse(t, "a,b,c\n1,2,\n2,4,5\n3,,4\n4,8,3\n")

	m, err := svc.Correlation(ds)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
	assert.InDelta(t, -1.0, m.Values[0][2], 1e-12)
}

func TestCorrelation_ZeroVarianceContributesZero(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "flat,rising\n5,1\n5,2\n5,3\n")

	m, err := svc.Correlation(ds)
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.Values[0][1])
	assert.Equal(t, 1.0, m.Values[0][0], "diagonal stays 1 even for a constant column")
}

func TestCorrelation_NotEnoughNumericColumns(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "value,label\n1,a\n2,b\n")

	_, err := svc.Correlation(ds)
	assert.ErrorIs(t, err, ErrNotEnoughNumericColumns)
}

func TestTopCorrelations_OrderAndCap(t *testing.T) {
	svc := NewService()
	m := models.CorrelationMatrix{
		Columns: []string{"a", "b", "c", "d"},
		Values: [][]float64{
			{1.0, 0.9, -0.8, 0.3},
			{0.9, 1.0, 0.3, 0.5},
			{-0.8, 0.3, 1.0, 0.1},
			{0.3, 0.5, 0.1, 1.0},
		},
	}

	top := svc.TopCorrelations(m)

	require.Len(t, top, 5, "six pairs truncate to five")
	assert.Equal(t, models.CorrelationPair{ColumnA: "a", ColumnB: "b", Correlation: 0.9}, top[0])
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Correlation, top[i].Correlation, "descending by signed value")
	}
	// Signed ordering, not magnitude: the -0.8 pair sorts below 0.1 and
	// falls off the truncated list.
	assert.Equal(t, 0.1, top[4].Correlation)
	for _, p := range top {
		assert.NotEqual(t, -0.8, p.Correlation)
	}

	// Ties keep pair order: (a,d) appears before (b,c), both at 0.3.
	assert.Equal(t, "a", top[2].ColumnA)
	assert.Equal(t, "d", top[2].ColumnB)
	assert.Equal(t, "b", top[3].ColumnA)
	assert.Equal(t, "c", top[3].ColumnB)

	seen := map[string]bool{}
	for _, p := range top {
		key := p.ColumnA + "|" + p.ColumnB
		assert.False(t, seen[key], "no duplicate unordered pair")
		seen[key] = true
	}
}

func TestTopCorrelations_EmptyOnSmallMatrix(t *testing.T) {
	svc := NewService()

	assert.Empty(t, svc.TopCorrelations(models.CorrelationMatrix{}))
	assert.Empty(t, svc.TopCorrelations(models.CorrelationMatrix{
		Columns: []string{"only"},
		Values:  [][]float64{{1}},
	}))
}

func TestPairDetail(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "x,y\n1,2\n2,4\n3,6\n4,8\n5,10\n")

	detail, err := svc.PairDetail(ds, "x", "y")
	require.NoError(t, err)

	assert.Equal(t, "x", detail.ColumnX)
	assert.Equal(t, "y", detail.ColumnY)
	assert.InDelta(t, 1.0, detail.Pearson, 1e-12)
	assert.InDelta(t, 1.0, detail.Spearman, 1e-12)
	assert.Equal(t, "Strong", detail.Strength)
	assert.Equal(t, 5, detail.SampleSize)
}

func TestPairDetail_Errors(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "x,y,label\n1,2,a\n2,,b\n")

	_, err := svc.PairDetail(ds, "x", "nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = svc.PairDetail(ds, "x", "label")
	assert.ErrorIs(t, err, ErrColumnNotNumeric)

	// Only one row has both values.
	_, err = svc.PairDetail(ds, "x", "y")
	assert.ErrorIs(t, err, ErrNotEnoughValues)
}

func TestStrengthLabel(t *testing.T) {
	assert.Equal(t, "Strong", strengthLabel(-0.85))
	assert.Equal(t, "Moderate", strengthLabel(0.5))
	assert.Equal(t, "Weak", strengthLabel(-0.25))
	assert.Equal(t, "None", strengthLabel(0.05))
}

func TestScatter_SkipsIncompleteRows(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, "x,y\n1,10\n2,\n,30\n4,40\n")

	resp, err := svc.Scatter(ds, "x", "y")
	require.NoError(t, err)

	require.Len(t, resp.Points, 2)
	assert.Equal(t, models.ScatterPoint{X: 1, Y: 10}, resp.Points[0])
	assert.Equal(t, models.ScatterPoint{X: 4, Y: 40}, resp.Points[1])
	assert.Equal(t, 2, resp.SampleSize)
	assert.False(t, resp.Truncated)
}

func TestScatter_TruncatesAtCap(t *testing.T) {
	svc := NewService()

	var sb strings.Builder
	sb.WriteString("x,y\n")
	for i := 0; i < maxScatterPoints+5; i++ {
		fmt.Fprintf(&sb, "%d,%d\n", i, i*2)
	}
	ds := mustParse(t, sb.String())

	resp, err := svc.Scatter(ds, "x", "y")
	require.NoError(t, err)

	assert.Len(t, resp.Points, maxScatterPoints)
	assert.True(t, resp.Truncated)
}
