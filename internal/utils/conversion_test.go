package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawToUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount sdkmath.Int
		want   float64
	}{
		{"one token", sdkmath.NewIntWithDecimal(1, 18), 1},
		{"million tokens", sdkmath.NewIntWithDecimal(1, 24), 1_000_000},
		{"half token", sdkmath.NewIntWithDecimal(5, 17), 0.5},
		{"zero", sdkmath.ZeroInt(), 0},
		{"negative", sdkmath.NewInt(-5), 0},
		{"nil", sdkmath.Int{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RawToUnits(tt.amount), 1e-9)
		})
	}
}

func TestRawToUnitsExtremeMagnitude(t *testing.T) {
	// Values past float64 integer precision must still stay finite.
	huge := sdkmath.NewIntWithDecimal(1, 60)
	units := RawToUnits(huge)
	assert.False(t, math.IsInf(units, 0))
	assert.InEpsilon(t, 1e42, units, 1e-9)
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.5, Ratio(sdkmath.NewInt(1), sdkmath.NewInt(2)), 1e-9)
	assert.InDelta(t, 2.0, Ratio(sdkmath.NewInt(4), sdkmath.NewInt(2)), 1e-9)
	assert.Zero(t, Ratio(sdkmath.NewInt(1), sdkmath.ZeroInt()))
	assert.Zero(t, Ratio(sdkmath.NewInt(-1), sdkmath.NewInt(2)))
	assert.Zero(t, Ratio(sdkmath.Int{}, sdkmath.Int{}))
}

func TestWeightAndPercentage(t *testing.T) {
	part := sdkmath.NewInt(250)
	total := sdkmath.NewInt(1000)
	assert.InDelta(t, 0.25, Weight(part, total), 1e-9)
	assert.InDelta(t, 25.0, Percentage(part, total), 1e-9)
}

func TestScaleInt(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		factor float64
		want   string
	}{
		{"exact quarter", 1000, 0.25, "250"},
		{"floors fraction", 100, 1.0 / 3.0, "33"},
		{"whole", 500, 1.0, "500"},
		{"zero factor", 500, 0, "0"},
		{"negative floors toward -inf", 100, -1.0 / 3.0, "-34"},
		{"negative exact", 1000, -0.25, "-250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScaleInt(sdkmath.NewInt(tt.total), tt.factor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestScaleIntRejectsNonFinite(t *testing.T) {
	_, err := ScaleInt(sdkmath.NewInt(100), math.NaN())
	assert.ErrorIs(t, err, ErrNotFinite)

	_, err = ScaleInt(sdkmath.NewInt(100), math.Inf(1))
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestScaleIntNilTotal(t *testing.T) {
	got, err := ScaleInt(sdkmath.Int{}, 0.5)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
