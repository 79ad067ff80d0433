package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseTemporal(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"2024-01-15", true},
		{"2024-01-15 10:30:00", true},
		{"2024-01-15T10:30:00Z", true},
		{"01/15/2024", true},
		{"15-Jan-2024", true},
		{"January 15, 2024", true},
		{"not-a-date", false},
		{"12345", false},
		{"", false},
	}

	for _, tc := range cases {
		_, ok := TryParseTemporal(tc.value)
		assert.Equal(t, tc.ok, ok, "value %q", tc.value)
	}
}

func TestTryParseTemporal_USOrderingWins(t *testing.T) {
	parsed, ok := TryParseTemporal("01/02/2024")
	require.True(t, ok)
	assert.Equal(t, time.January, parsed.Month())
	assert.Equal(t, 2, parsed.Day())
}

func TestConvertTextColumnsToTemporal(t *testing.T) {
	ds, err := Parse([]byte("order_date,ship_date,region,value\n2024-01-01,2024-01-03,north,10\n2024-01-02,2024-01-04,south,20\n"))
	require.NoError(t, err)

	converted := ds.ConvertTextColumnsToTemporal()

	// Every fully parsing text column converts, in stored order.
	assert.Equal(t, []string{"order_date", "ship_date"}, converted)
	assert.Equal(t, KindTemporal, ds.Column("order_date").Kind)
	assert.Equal(t, KindTemporal, ds.Column("ship_date").Kind)
	assert.Equal(t, KindText, ds.Column("region").Kind)
	assert.Equal(t, KindNumeric, ds.Column("value").Kind)

	ts, ok := ds.Column("order_date").TimeAt(1)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ts)
}

func TestConvertTextColumnsToTemporal_SilentFailure(t *testing.T) {
	ds, err := Parse([]byte("when,label\n2024-01-01,a\nnot-a-date,b\n"))
	require.NoError(t, err)

	converted := ds.ConvertTextColumnsToTemporal()

	assert.Empty(t, converted)
	assert.Equal(t, KindText, ds.Column("when").Kind, "one bad value keeps the whole column text")
}

func TestConvertTextColumnsToTemporal_SkipsMissing(t *testing.T) {
	ds, err := Parse([]byte("when,value\n2024-01-01,1\n,2\n2024-01-03,3\n"))
	require.NoError(t, err)

	converted := ds.ConvertTextColumnsToTemporal()
	require.Equal(t, []string{"when"}, converted)

	when := ds.Column("when")
	_, ok := when.TimeAt(1)
	assert.False(t, ok, "missing cell stays missing after conversion")
	assert.True(t, when.IsMissing(1))
}

func TestConvertTextColumnsToTemporal_Idempotent(t *testing.T) {
	ds, err := Parse([]byte("when,value\n2024-01-01,1\n2024-01-02,2\n"))
	require.NoError(t, err)

	first := ds.ConvertTextColumnsToTemporal()
	require.Equal(t, []string{"when"}, first)

	second := ds.ConvertTextColumnsToTemporal()
	assert.Empty(t, second, "already converted columns are not rescanned")
	assert.Equal(t, KindTemporal, ds.Column("when").Kind)
}
