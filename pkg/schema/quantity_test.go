package schema

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		value any
		kind  Kind
		want  float64
	}{
		{"25 kHz", KindFrequency, 25000},
		{"25kHz", KindFrequency, 25000},
		{"-1.5e3 Hz", KindFrequency, -1500},
		{"400 MHz", KindFrequency, 4e8},
		{12.5, KindFrequency, 12.5},
		{int64(3), KindFrequency, 3},
		{"-89 ppm", KindDimensionless, -89},
		{"500 ppb", KindDimensionless, 0.5},
		{"4", KindDimensionless, 4},
		{"9.4 T", KindMagneticFluxDensity, 9.4},
		{"100 mT", KindMagneticFluxDensity, 0.1},
		{"180 deg", KindAngle, math.Pi},
		{"90 °", KindAngle, math.Pi / 2},
		{"1.2 rad", KindAngle, 1.2},
		{"4.67 %", KindPercent, 4.67},
	}

	for _, tt := range tests {
		got, err := ParseQuantity(tt.value, tt.kind)
		require.NoError(t, err, "%v", tt.value)
		assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.value)
	}
}

func TestParseQuantity_UnitMismatch(t *testing.T) {
	_, err := ParseQuantity("10 ppm", KindFrequency)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnitMismatch))

	var mismatch *UnitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, KindFrequency, mismatch.Want)
	assert.Equal(t, KindDimensionless, mismatch.Got)
	assert.Equal(t, "ppm", mismatch.Unit)
}

func TestParseQuantity_Invalid(t *testing.T) {
	for _, v := range []any{"kHz", "10 furlongs", true, nil} {
		_, err := ParseQuantity(v, KindFrequency)
		assert.Error(t, err, "%v", v)
		assert.False(t, errors.Is(err, ErrUnitMismatch), "%v", v)
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "25000 Hz", FormatQuantity(25000, KindFrequency))
	assert.Equal(t, "-89 ppm", FormatQuantity(-89, KindDimensionless))
}
