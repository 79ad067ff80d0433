package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = `date,region,units,price,active
2024-01-01,north,10,9.99,true
2024-01-02,south,20,19.50,false
2024-01-05,north,,4.25,true
`

func TestSummary(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)

	sum := svc.Summary(ds)

	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 5, sum.Columns)
	assert.Equal(t, []string{"date", "region", "units", "price", "active"}, sum.ColumnNames)
	assert.Equal(t, 1, sum.MissingValues)
	assert.Equal(t, 2, sum.NumericColumns)
}

func TestClassification(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)

	cls := svc.Classification(ds)

	assert.Equal(t, []string{"units", "price"}, cls.Numeric)
	assert.Equal(t, []string{"date", "region"}, cls.Categorical)
	assert.Equal(t, []string{"active"}, cls.Other)
	assert.Empty(t, cls.Temporal)
	assert.Equal(t, "numeric", cls.Classes["price"])
	assert.Equal(t, "categorical", cls.Classes["date"])
	assert.Len(t, cls.Classes, 5)
}

func TestPreview(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)

	resp := svc.Preview(ds, 2)

	assert.Equal(t, []string{"date", "region", "units", "price", "active"}, resp.Columns)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Rows, 2)

	first := resp.Rows[0]
	assert.Equal(t, "2024-01-01", first["date"])
	assert.Equal(t, 10.0, first["units"], "numeric cells keep their type")
	assert.Equal(t, true, first["active"], "bool cells keep their type")
}

func TestPreview_Limits(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)

	assert.Len(t, svc.Preview(ds, 0).Rows, 3, "default limit capped by row count")
	assert.Len(t, svc.Preview(ds, 500).Rows, 3)

	missing := svc.Preview(ds, 3).Rows[2]
	assert.Nil(t, missing["units"], "missing cells render as null")
}

func TestProfile(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)

	resp := svc.Profile(ds)
	require.Len(t, resp.Columns, 5)

	units := resp.Columns[2]
	assert.Equal(t, "units", units.Name)
	assert.Equal(t, "numeric", units.Kind)
	assert.Equal(t, 1, units.MissingCount)
	assert.InDelta(t, 1.0/3.0, units.NullRate, 1e-12)
	assert.Equal(t, 2, units.DistinctCount)
	require.NotNil(t, units.Mean)
	assert.Equal(t, 15.0, *units.Mean)
	require.NotNil(t, units.Min)
	assert.Equal(t, 10.0, *units.Min)

	region := resp.Columns[1]
	assert.Equal(t, "text", region.Kind)
	assert.Equal(t, 2, region.DistinctCount)
	require.NotEmpty(t, region.TopValues)
	assert.Equal(t, "north", region.TopValues[0].Value)
	assert.Equal(t, 2, region.TopValues[0].Count)
	// north 2/3, south 1/3: H = -(2/3)log2(2/3) - (1/3)log2(1/3).
	wantEntropy := -(2.0/3.0)*math.Log2(2.0/3.0) - (1.0/3.0)*math.Log2(1.0/3.0)
	assert.InDelta(t, wantEntropy, region.Entropy, 1e-12)
}

func TestProfile_TemporalRange(t *testing.T) {
	svc := NewService()
	ds := mustParse(t, surveyCSV)
	ds.ConvertTextColumnsToTemporal()

	resp := svc.Profile(ds)

	date := resp.Columns[0]
	assert.Equal(t, "temporal", date.Kind)
	require.NotNil(t, date.MinTime)
	require.NotNil(t, date.MaxTime)
	assert.Equal(t, "2024-01-01", date.MinTime.Format("2006-01-02"))
	assert.Equal(t, "2024-01-05", date.MaxTime.Format("2006-01-02"))
}

func TestDescribe(t *testing.T) {
	mn, mx, mean, std := describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 2.0, mn)
	assert.Equal(t, 9.0, mx)
	assert.Equal(t, 5.0, mean)
	assert.InDelta(t, 2.138089935, std, 1e-9, "sample standard deviation")

	_, _, mean, std = describe([]float64{42})
	assert.Equal(t, 42.0, mean)
	assert.Equal(t, 0.0, std, "single value has no spread")
}
