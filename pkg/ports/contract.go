package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim/pkg/domain"
)

// RunSpectrumStoreContract runs a suite of tests to verify that a
// SpectrumStore implementation adheres to the interface contract.
func RunSpectrumStoreContract(t *testing.T, store SpectrumStore) {
	ctx := context.Background()
	key := "contract-test-spectrum-" + time.Now().Format("20060102150405")

	spectrum := domain.NewSpectrum(domain.Axis{Count: 4, SpectralWidth: 400, ReferenceOffset: -50, Label: "29Si"})
	copy(spectrum.Data, []float64{0, 0.25, 1, 0.125})

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, spectrum), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		require.NotNil(t, loaded)

		assert.Equal(t, spectrum.Axes, loaded.Axes)
		assert.Equal(t, spectrum.Data, loaded.Data)
	})

	t.Run("Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded.Data[0] = 99

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 0.0, again.Data[0], "mutating a loaded spectrum must not change the store")
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key)
	})

	t.Run("Load Not Found", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-spectrum")
		assert.ErrorIs(t, err, ErrSpectrumNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, ErrSpectrumNotFound, "Load after Delete should fail")

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key)

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})
}
