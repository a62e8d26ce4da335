package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCacheSetGetDelete(t *testing.T) {
	cache := NewLocalCache(1, 4)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1", 0))
	require.NoError(t, cache.Set(ctx, "b", "2", time.Minute))

	v, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	require.NoError(t, cache.Delete(ctx, "a", "b", "missing"))
	v, err = cache.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLocalCacheExpiry(t *testing.T) {
	cache := NewLocalCache(1, 4)
	defer cache.Close()
	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(context.Background(), "k", "v", time.Second))
	now = now.Add(2 * time.Second)

	v, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSubmitTaskRunsAndSurvivesPanic(t *testing.T) {
	cache := NewLocalCache(2, 8)

	var wg sync.WaitGroup
	wg.Add(2)
	cache.SubmitTask(func() {
		defer wg.Done()
		panic("boom")
	})
	done := false
	cache.SubmitTask(func() {
		defer wg.Done()
		done = true
	})
	wg.Wait()
	cache.Close()
	assert.True(t, done)
}
