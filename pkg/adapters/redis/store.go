package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/ports"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "mrsim:"

// Store implements ports.SpectrumStore using Redis. Spectra are stored as
// JSON strings, with a sorted-set index scored by expiry time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored spectra.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store connected to address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client returns the underlying client, for sharing with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(key string) string {
	return s.prefix + "spectrum:" + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the spectrum to Redis.
func (s *Store) Save(ctx context.Context, key string, spectrum *domain.Spectrum) error {
	data, err := json.Marshal(spectrum)
	if err != nil {
		return fmt.Errorf("failed to marshal spectrum: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)

	// score is the expiry time; entries without a TTL never expire
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the spectrum from Redis.
func (s *Store) Load(ctx context.Context, key string) (*domain.Spectrum, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrSpectrumNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var spectrum domain.Spectrum
	if err := json.Unmarshal(val, &spectrum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spectrum: %w", err)
	}
	return &spectrum, nil
}

// Delete removes the spectrum.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored keys, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired spectra: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list spectra: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
