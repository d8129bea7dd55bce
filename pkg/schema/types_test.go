package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), 42, true},
		{Int(), 42, false},
		{Int(), int64(42), false},
		{Int(), float64(42), false},
		{Int(), 42.5, true},
		{Int(), "42", true},
		{Float(), 3.14, false},
		{Float(), 3, false},
		{Float(), "3.14", true},
		{Bool(), true, false},
		{Bool(), nil, true},
		{Slice(Int()), []any{1, 2.0}, false},
		{Slice(Int()), []any{1, "x"}, true},
		{Slice(Int()), 1, true},
		{Optional(Int()), nil, false},
		{Optional(Int()), "x", true},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if tt.wantErr {
			assert.Error(t, err, "%s.Validate(%v)", tt.typ.Name(), tt.value)
		} else {
			assert.NoError(t, err, "%s.Validate(%v)", tt.typ.Name(), tt.value)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"string", "int", "float", "bool", "frequency", "angle", "[dimensionless]", "percent?", "[int]?"} {
		typ, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, typ.Name())
	}

	_, err := ParseType("complex")
	assert.Error(t, err)
}

func TestSliceNormalize(t *testing.T) {
	out, err := Slice(Frequency()).(Normalizer).Normalize([]any{"1 kHz", 5})
	require.NoError(t, err)
	assert.Equal(t, []any{1000.0, 5.0}, out)
}
