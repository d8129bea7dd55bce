package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	Name  string  `json:"name" validate:"required"`
	Eta   float64 `json:"eta" validate:"gte=0,lte=1"`
	Rate  float64 `json:"rate" validate:"finite"`
	Inner *inner  `json:"inner,omitempty" validate:"omitempty"`
}

type inner struct {
	Count int `json:"count" validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(probe{Name: "ok", Eta: 0.5}))

	err := ValidateStruct(probe{Eta: 1.5, Rate: math.NaN(), Inner: &inner{}})
	require.Error(t, err)

	keys := map[string]string{}
	for _, e := range ValidationErrors(err) {
		ve := e.(*ValidationError)
		keys[ve.Key] = ve.Reason
	}
	assert.Equal(t, map[string]string{
		"name":        "required",
		"eta":         "must be at most 1",
		"rate":        "must be a finite number",
		"inner.count": "must be greater than 0",
	}, keys)
}
