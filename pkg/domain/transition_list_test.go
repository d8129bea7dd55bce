package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustList(t *testing.T, values ...any) *TransitionList {
	t.Helper()
	l, err := NewTransitionList(values...)
	require.NoError(t, err)
	return l
}

func TestTransitionList_Mutation(t *testing.T) {
	a := map[string]any{"initial": []any{0.5, 1.5}, "final": []any{-0.5, 1.5}}
	b := MustTransition([]float64{-0.5, -1.5}, []float64{-1.5, -1.5})
	c := map[string]any{"initial": []float64{-1.5, -1.5}, "final": []float64{1.5, -1.5}}

	list := mustList(t)
	require.NoError(t, list.Append(a))
	first, err := list.At(0)
	require.NoError(t, err)
	assert.True(t, first.Equal(MustTransition([]float64{0.5, 1.5}, []float64{-0.5, 1.5})))

	require.NoError(t, list.Append(b))
	assert.ErrorIs(t, list.Append("test"), ErrTypeKind)

	require.NoError(t, list.Set(1, c))
	assert.ErrorIs(t, list.Set(1, "test"), ErrTypeKind)
	assert.ErrorIs(t, list.Set(5, b), ErrOutOfRange)

	require.NoError(t, list.Insert(1, b))
	assert.Equal(t, 3, list.Len())
	second, _ := list.At(1)
	assert.True(t, second.Equal(b))

	require.NoError(t, list.Delete(1))
	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Equal(mustList(t, a, c)))
	assert.False(t, list.Equal(mustList(t, a)))
	assert.False(t, list.Equal(mustList(t, a, b)))
	assert.False(t, list.Equal(mustList(t, c, a)))

	_, err = list.At(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, list.Delete(2), ErrOutOfRange)
	assert.ErrorIs(t, list.Insert(3, b), ErrOutOfRange)
}

func TestTransitionList_RejectsMalformedMaps(t *testing.T) {
	list := mustList(t)
	assert.ErrorIs(t, list.Append(map[string]any{"initial": []float64{0.5}}), ErrTypeKind)
	assert.ErrorIs(t, list.Append(map[string]any{"initial": []float64{0.5}, "final": []float64{0.5}, "extra": 1}), ErrTypeKind)
	assert.ErrorIs(t, list.Append(nil), ErrTypeKind)
	assert.ErrorIs(t, list.Append((*Transition)(nil)), ErrTypeKind)
	assert.Equal(t, 0, list.Len())
}

func TestTransitionList_Filter(t *testing.T) {
	a := MustTransition([]float64{0.5, 1.5}, []float64{-0.5, 1.5})
	b := MustTransition([]float64{-0.5, -1.5}, []float64{-1.5, -1.5})
	c := MustTransition([]float64{-1.5, -1.5}, []float64{1.5, -1.5})
	list := mustList(t, a, b, c)

	tests := []struct {
		name string
		opts []FilterOption
		want *TransitionList
	}{
		{"no targets", nil, list},
		{"P", []FilterOption{WithP([]int{-1, 0})}, mustList(t, a, b)},
		{"P no match", []FilterOption{WithP([]int{-1, -1})}, mustList(t)},
		{"D", []FilterOption{WithD([]int{0, 0})}, mustList(t, a, c)},
		{"P and D", []FilterOption{WithP([]int{3, 0}), WithD([]int{0, 0})}, mustList(t, c)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := list.Filter(tt.opts...)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v", got.Items())

			again, err := got.Filter(tt.opts...)
			require.NoError(t, err)
			assert.True(t, again.Equal(got), "filter is idempotent")
		})
	}

	_, err := list.Filter(WithP([]int{-1}))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
