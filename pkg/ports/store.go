package ports

import (
	"context"
	"errors"

	"github.com/aretw0/mrsim/pkg/domain"
)

// ErrSpectrumNotFound is returned by Load for an unknown key.
var ErrSpectrumNotFound = errors.New("spectrum not found")

// SpectrumStore persists simulated spectra under caller-chosen keys,
// so a finished run can be fetched later by an HTTP or MCP client.
type SpectrumStore interface {
	// Save persists the spectrum under key, replacing any previous value.
	Save(ctx context.Context, key string, spectrum *domain.Spectrum) error

	// Load retrieves the spectrum stored under key.
	// Returns ErrSpectrumNotFound if nothing is stored.
	Load(ctx context.Context, key string) (*domain.Spectrum, error)

	// Delete removes the spectrum stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys.
	List(ctx context.Context) ([]string, error)
}
