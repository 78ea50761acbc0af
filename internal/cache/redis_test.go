package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"site-traffic-workers/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	clock := newClock()
	store := NewRedis(rdb, Options{TTL: time.Hour, KeyPrefix: "test", Now: clock.Now})

	_, ok, err := store.Get(ctx, bangkok)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, bangkok, sampleAnalysis()))

	key := Key("test", bangkok, clock.t)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	got, ok, err := store.Get(ctx, bangkok)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Cached)
	assert.Equal(t, 630, got.TotalDailyVisits)

	require.NoError(t, store.Delete(ctx, bangkok))
	assert.False(t, mr.Exists(key))
}

func TestRedis_ExpiredStampIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	clock := newClock()
	store := NewRedis(rdb, Options{TTL: 30 * time.Minute, Now: clock.Now})

	require.NoError(t, store.Put(ctx, bangkok, sampleAnalysis()))

	// miniredis does not advance on its own, so the key is still present
	clock.Advance(31 * time.Minute)
	_, ok, err := store.Get(ctx, bangkok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	clock := newClock()
	store := NewRedis(rdb, Options{Now: clock.Now})
	require.NoError(t, mr.Set(Key(DefaultKeyPrefix, bangkok, clock.t), "{not json"))

	_, ok, err := store.Get(context.Background(), bangkok)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCacheReadFailed, errors.CodeOf(err))
}

func TestRedis_BackendErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	clock := newClock()
	store := NewRedis(db, Options{TTL: time.Hour, Now: clock.Now})
	key := Key(DefaultKeyPrefix, bangkok, clock.t)

	t.Run("read", func(t *testing.T) {
		mock.ExpectGet(key).SetErr(fmt.Errorf("connection refused"))

		_, ok, err := store.Get(context.Background(), bangkok)

		assert.False(t, ok)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCacheReadFailed, errors.CodeOf(err))
	})

	t.Run("write", func(t *testing.T) {
		mock.Regexp().ExpectSet(key, `.*`, time.Hour).SetErr(fmt.Errorf("READONLY"))

		err := store.Put(context.Background(), bangkok, sampleAnalysis())

		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCacheWriteFailed, errors.CodeOf(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
