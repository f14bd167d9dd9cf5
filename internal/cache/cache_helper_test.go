package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	ID         uint `json:"id"`
	StreakDays *int `json:"streak_days"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, time.Minute), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	streak := 5
	require.NoError(t, cm.Profile.Set(ctx, IDKey(1), cachedProfile{ID: 1, StreakDays: &streak}, time.Minute))
	assert.True(t, mr.Exists("profile:id:1"))

	var got cachedProfile
	require.NoError(t, cm.Profile.Get(ctx, IDKey(1), &got))
	assert.Equal(t, uint(1), got.ID)
	require.NotNil(t, got.StreakDays)
	assert.Equal(t, 5, *got.StreakDays)

	require.NoError(t, cm.Profile.Delete(ctx, IDKey(1)))
	err := cm.Profile.Get(ctx, IDKey(1), &got)
	assert.True(t, errors.Is(err, ErrCacheNotFound))
}

func TestCacheHelper_NilClient(t *testing.T) {
	cm := NewCacheManager(nil, 0)
	ctx := context.Background()

	assert.False(t, cm.Profile.Enabled())
	assert.Equal(t, DefaultTTL, cm.Profile.TTL())
	assert.NoError(t, cm.Profile.Set(ctx, "k", 1, time.Minute))
	assert.ErrorIs(t, cm.Profile.Get(ctx, "k", new(int)), ErrCacheNotAvailable)
	assert.NoError(t, cm.Profile.InvalidatePattern(ctx, "*"))
	assert.NoError(t, cm.HealthCheck(ctx))

	calls := 0
	var dest int
	err := cm.Profile.CacheOrExecute(ctx, "k", &dest, func() (interface{}, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, dest)
	assert.Equal(t, 1, calls)
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	fetch := func() (interface{}, error) {
		return cachedProfile{ID: 7}, nil
	}

	var first cachedProfile
	require.NoError(t, cm.Student.CacheOrExecute(ctx, IDKey(7), &first, fetch))
	assert.Equal(t, uint(7), first.ID)

	assert.True(t, mr.Exists("student:id:7"))

	var second cachedProfile
	err := cm.Student.CacheOrExecute(ctx, IDKey(7), &second, func() (interface{}, error) {
		return nil, errors.New("should not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), second.ID)
}

func TestCacheHelper_FetchErrorPassesThrough(t *testing.T) {
	cm, _ := newTestManager(t)
	sentinel := errors.New("boom")

	var dest cachedProfile
	err := cm.Profile.CacheOrExecute(context.Background(), IDKey(1), &dest, func() (interface{}, error) {
		return nil, sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestInvalidateUserCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Profile.Set(ctx, OwnerKey(3), 1, time.Minute))
	require.NoError(t, cm.Student.Set(ctx, OwnerKey(3), 1, time.Minute))
	require.NoError(t, cm.User.Set(ctx, IDKey(3), 1, time.Minute))
	require.NoError(t, cm.Profile.Set(ctx, OwnerKey(4), 1, time.Minute))

	InvalidateUserCache(ctx, cm, 3)

	assert.False(t, mr.Exists("profile:owner:3"))
	assert.False(t, mr.Exists("student:owner:3"))
	assert.False(t, mr.Exists("user:id:3"))
	assert.True(t, mr.Exists("profile:owner:4"))
}

func TestCacheManager_ClearAll(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Profile.Set(ctx, IDKey(1), 1, time.Minute))
	require.NoError(t, cm.Student.Set(ctx, IDKey(1), 1, time.Minute))
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, cm.ClearAll(ctx))

	assert.False(t, mr.Exists("profile:id:1"))
	assert.False(t, mr.Exists("student:id:1"))
	assert.True(t, mr.Exists("unrelated"))
}

func TestCacheManager_Deferred(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Profile.Set(ctx, IDKey(1), cachedProfile{ID: 1}, time.Minute))

	tx := cm.Deferred()
	assert.True(t, tx.IsDeferred())
	assert.False(t, cm.IsDeferred())
	assert.Same(t, tx, tx.Deferred())

	// Reads go to the source and are not written back
	calls := 0
	var got cachedProfile
	require.NoError(t, tx.Student.CacheOrExecute(ctx, IDKey(2), &got, func() (interface{}, error) {
		calls++
		return cachedProfile{ID: 2}, nil
	}))
	assert.Equal(t, uint(2), got.ID)
	assert.Equal(t, 1, calls)
	assert.False(t, mr.Exists("student:id:2"))
	assert.ErrorIs(t, tx.Profile.Get(ctx, IDKey(1), &got), ErrCacheNotAvailable)

	// Deletes wait for Flush
	InvalidateRecordCache(ctx, tx.Profile, 1, 9)
	assert.True(t, mr.Exists("profile:id:1"))

	require.NoError(t, tx.Flush(ctx))
	assert.False(t, mr.Exists("profile:id:1"))
	require.NoError(t, tx.Flush(ctx))
}

func TestCacheManager_DeferredDiscard(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.User.Set(ctx, IDKey(4), 1, time.Minute))

	tx := cm.Deferred()
	InvalidateUserCache(ctx, tx, 4)
	tx.Discard()
	require.NoError(t, tx.Flush(ctx))

	assert.True(t, mr.Exists("user:id:4"))
}
