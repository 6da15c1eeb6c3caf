package aggregator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarFromJSON(t *testing.T, raw string) Scalar {
	t.Helper()
	var holder struct {
		V Scalar `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"v":`+raw+`}`), &holder))
	return holder.V
}

func TestScalarInt64(t *testing.T) {
	cases := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: `1700000000`, want: 1700000000},
		{raw: `"1700000000"`, want: 1700000000},
		{raw: `" 42 "`, want: 42},
		{raw: `1629178166.9`, want: 1629178166},
		{raw: `-3.5`, want: -3},
		{raw: `1e3`, want: 1000},
		{raw: `"1.5"`, wantErr: true},
		{raw: `"abc"`, wantErr: true},
		{raw: `null`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `{"$numberLong":"1"}`, wantErr: true},
	}

	for _, tc := range cases {
		got, err := scalarFromJSON(t, tc.raw).Int64()
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := Scalar{}.Int64()
	assert.Error(t, err)
}

func TestScalarFloat64(t *testing.T) {
	got, err := scalarFromJSON(t, `"1.0001"`).Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.0001, got)

	got, err = scalarFromJSON(t, `3`).Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	for _, raw := range []string{`"n/a"`, `"NaN"`, `"inf"`, `null`, `""`} {
		_, err := scalarFromJSON(t, raw).Float64()
		assert.Error(t, err, raw)
	}
}

func TestNormalizeAmount(t *testing.T) {
	amount, ok := NormalizeAmount(ScalarOf("2000000000"), "USDC")
	require.True(t, ok)
	assert.Equal(t, "2000", amount.String())

	amount, ok = NormalizeAmount(ScalarOf("150000000"), "WBTC")
	require.True(t, ok)
	assert.Equal(t, "1.5", amount.String())

	// beyond int64: 25,000 DAI
	amount, ok = NormalizeAmount(ScalarOf("25000000000000000000000"), "DAI")
	require.True(t, ok)
	assert.Equal(t, "25000", amount.String())

	amount, ok = NormalizeAmount(ScalarOf("1"), "UNKNOWN")
	require.True(t, ok)
	assert.Equal(t, "0.000000000000000001", amount.String())

	amount, ok = NormalizeAmount(scalarFromJSON(t, `1500000.7`), "USDC")
	require.True(t, ok)
	assert.Equal(t, "1.5", amount.String())

	amount, ok = NormalizeAmount(Scalar{}, "USDC")
	assert.True(t, ok)
	assert.True(t, amount.IsZero())

	for _, raw := range []string{`"12.5"`, `"0x10"`, `"ten"`, `null`} {
		amount, ok = NormalizeAmount(scalarFromJSON(t, raw), "USDC")
		assert.False(t, ok, raw)
		assert.True(t, amount.IsZero(), raw)
	}
}

func TestPrecision(t *testing.T) {
	assert.Equal(t, int32(6), Precision("USDC"))
	assert.Equal(t, int32(6), Precision("USDT"))
	assert.Equal(t, int32(8), Precision("WBTC"))
	assert.Equal(t, int32(18), Precision("WPOL"))
	assert.Equal(t, int32(18), Precision("usdc"))
	assert.Equal(t, int32(18), Precision(""))
}
