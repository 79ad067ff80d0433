package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsRaggedColumns(t *testing.T) {
	_, err := New([]*Column{
		{Name: "a", Kind: KindText, Cells: []string{"x", "y"}},
		{Name: "b", Kind: KindText, Cells: []string{"x"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRaggedColumns)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestClassify_PartitionsEveryColumn(t *testing.T) {
	ds, err := Parse([]byte(salesCSV))
	require.NoError(t, err)

	cls := ds.Classify()

	assert.Equal(t, []string{"units", "price"}, cls.Numeric)
	assert.Equal(t, []string{"date", "region"}, cls.Categorical)
	assert.Equal(t, []string{"active"}, cls.Other)
	assert.Empty(t, cls.Temporal)

	// Every column lands in exactly one bucket.
	total := len(cls.Numeric) + len(cls.Temporal) + len(cls.Categorical) + len(cls.Other)
	assert.Equal(t, ds.ColumnCount(), total)
	for _, name := range ds.ColumnNames() {
		assert.Contains(t, cls.Classes, name)
	}
}

func TestClassify_ReflectsConversion(t *testing.T) {
	ds, err := Parse([]byte("day,amount\n2024-03-01,5\n2024-03-02,6\n"))
	require.NoError(t, err)

	before := ds.Classify()
	assert.Empty(t, before.Temporal)
	assert.Equal(t, []string{"day"}, before.Categorical)

	ds.ConvertTextColumnsToTemporal()

	after := ds.Classify()
	assert.Equal(t, []string{"day"}, after.Temporal)
	assert.Empty(t, after.Categorical)
	assert.Equal(t, ClassTemporal, after.Classes["day"])
}

func TestColumnLookup(t *testing.T) {
	ds, err := Parse([]byte(salesCSV))
	require.NoError(t, err)

	require.NotNil(t, ds.Column("price"))
	assert.Nil(t, ds.Column("no_such_column"))

	numeric := ds.NumericColumns()
	require.Len(t, numeric, 2)
	assert.Equal(t, "units", numeric[0].Name)
	assert.Equal(t, "price", numeric[1].Name)
}
