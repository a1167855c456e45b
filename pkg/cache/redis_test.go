package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, closer, err := New(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer closer()
	assert.NoError(t, client.Ping(context.Background()).Err())

	mr.Close()
	_, _, err = New(context.Background(), Config{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond, MaxRetries: 1})
	assert.Error(t, err)
}

func TestIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client, closer, err := New(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer closer()

	store := NewIdempotencyStore(client, "idempotency", time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "create-order", "key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "create-order", "key-1")
	require.NoError(t, err)
	assert.False(t, ok, "replayed key must be rejected")

	// scopes do not collide
	ok, err = store.Reserve(ctx, "other", "key-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Release(ctx, "create-order", "key-1"))
	ok, err = store.Reserve(ctx, "create-order", "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "released key can be reserved again")

	assert.Equal(t, time.Hour, mr.TTL(store.Key("create-order", "key-1")))

	mr.FastForward(time.Hour + time.Second)
	ok, err = store.Reserve(ctx, "create-order", "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "expired key can be reserved again")
}
