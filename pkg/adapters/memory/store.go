package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/ports"
)

// Store implements ports.SpectrumStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Spectrum
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Spectrum),
	}
}

// Save stores a copy of the spectrum.
func (s *Store) Save(ctx context.Context, key string, spectrum *domain.Spectrum) error {
	copied := spectrum.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load returns a copy of the stored spectrum.
func (s *Store) Load(ctx context.Context, key string) (*domain.Spectrum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spectrum, ok := s.data[key]
	if !ok {
		return nil, ports.ErrSpectrumNotFound
	}
	return spectrum.Clone(), nil
}

// Delete removes the spectrum.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
