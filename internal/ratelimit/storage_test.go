package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(client), mr
}

func TestRedisStorage_GetSetDelete(t *testing.T) {
	s, mr := newTestStorage(t)

	val, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("strict:10.0.0.1", []byte("3"), time.Minute))
	assert.True(t, mr.Exists(keyPrefix+"strict:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"strict:10.0.0.1"))

	val, err = s.Get("strict:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	require.NoError(t, s.Delete("strict:10.0.0.1"))
	val, err = s.Get("strict:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorage_Expiry(t *testing.T) {
	s, mr := newTestStorage(t)

	require.NoError(t, s.Set("api:10.0.0.1", []byte("1"), time.Second))
	mr.FastForward(2 * time.Second)

	val, err := s.Get("api:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorage_IgnoresEmptyInput(t *testing.T) {
	s, mr := newTestStorage(t)

	require.NoError(t, s.Set("", []byte("1"), time.Minute))
	require.NoError(t, s.Set("k", nil, time.Minute))
	require.NoError(t, s.Delete(""))
	assert.Empty(t, mr.Keys())
}

func TestRedisStorage_ResetKeepsForeignKeys(t *testing.T) {
	s, mr := newTestStorage(t)

	require.NoError(t, mr.Set("other:key", "keep"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(k, []byte("1"), 0))
	}

	require.NoError(t, s.Reset())

	assert.Equal(t, []string{"other:key"}, mr.Keys())
}

func TestRedisStorage_Unavailable(t *testing.T) {
	s, mr := newTestStorage(t)
	mr.Close()

	_, err := s.Get("k")
	assert.Error(t, err)
	assert.Error(t, s.Set("k", []byte("1"), time.Minute))
}

func TestNewRedisStorageFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStorageFromURL(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = NewRedisStorageFromURL(context.Background(), "not a url")
	assert.ErrorContains(t, err, "invalid REDIS_URL")
}
