package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tran := MustTransition([]float64{0.5, 1.5}, []float64{-0.5, 1.5})

	assert.Equal(t, []float64{0.5, 1.5}, tran.Initial())
	assert.Equal(t, []float64{-0.5, 1.5}, tran.Final())
	assert.Equal(t, []float64{0.5, 1.5, -0.5, 1.5}, tran.ToList())
	assert.Equal(t, []int{-1, 0}, tran.P())
	assert.Equal(t, []int{0, 0}, tran.D())
	assert.Equal(t, -1, tran.DeltaM())
	assert.Equal(t, 2, tran.Sites())
	assert.Equal(t, "|1/2, 3/2⟩ → |-1/2, 3/2⟩", tran.String())
}

func TestTransition_Immutable(t *testing.T) {
	initial := []float64{0.5}
	tran := MustTransition(initial, []float64{-0.5})
	initial[0] = 9
	tran.Initial()[0] = 7
	assert.Equal(t, []float64{0.5}, tran.Initial())
}

func TestNewTransition_Invalid(t *testing.T) {
	_, err := NewTransition([]float64{0.5}, []float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewTransition([]float64{0.25}, []float64{0.5})
	assert.Error(t, err)
}

func TestTransition_JSON(t *testing.T) {
	tran := MustTransition([]float64{0.5, 1.5}, []float64{-0.5, 1.5})
	raw, err := json.Marshal(tran)
	require.NoError(t, err)
	assert.JSONEq(t, `{"initial":[0.5,1.5],"final":[-0.5,1.5]}`, string(raw))

	var back Transition
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(tran))

	assert.Error(t, json.Unmarshal([]byte(`{"initial":[0.5],"final":[]}`), &back))
}

func TestTypeError(t *testing.T) {
	err := error(&TypeError{Got: "string"})
	assert.True(t, errors.Is(err, ErrTypeKind))
	assert.Equal(t, "expecting a Transition object or an equivalent map, instead found string", err.Error())
}
