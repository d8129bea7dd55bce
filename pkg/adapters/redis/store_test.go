package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mrsim/pkg/adapters/redis"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunSpectrumStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	spectrum := domain.NewSpectrum(domain.Axis{Count: 2, SpectralWidth: 10})
	require.NoError(t, store.Save(ctx, "short-lived", spectrum))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "short-lived")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "short-lived")
	assert.ErrorIs(t, err, ports.ErrSpectrumNotFound)

	// the index is pruned against the wall clock
	time.Sleep(1200 * time.Millisecond)
	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "run-1", domain.NewSpectrum(domain.Axis{Count: 1, SpectralWidth: 1})))

	assert.True(t, mr.Exists("custom:app:spectrum:run-1"))
	assert.True(t, mr.Exists("custom:app:index"))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, keys)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"spectrum:bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSpectrumNotFound)
}
