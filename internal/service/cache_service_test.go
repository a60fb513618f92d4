package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCacheServiceRoundTripAndMonthInvalidation(t *testing.T) {
	repo := newMemoryCache()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	hit, err := cache.Get(ctx, rankingCacheKey(march()), &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, rankingCacheKey(march()), []string{"u1"}, 0))
	require.NoError(t, cache.Set(ctx, summaryCacheKey("u1", march()), map[string]string{"user_id": "u1"}, 0))
	april := march().AddDate(0, 1, 0)
	require.NoError(t, cache.Set(ctx, rankingCacheKey(april), []string{"u2"}, 0))

	hit, err = cache.Get(ctx, rankingCacheKey(march()), &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"u1"}, dest)

	cache.InvalidateMonth(ctx, march())
	assert.Equal(t, []string{"okr:2024-03:*"}, repo.deleted)
	assert.False(t, repo.has("okr:2024-03:ranking"))
	assert.False(t, repo.has("okr:2024-03:summary:u1"))
	assert.True(t, repo.has("okr:2024-04:ranking"))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, 0.5, snapshot.CacheHitRatio)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "okr:2024-03:ranking", []string{"u1"}, 0))
	assert.False(t, repo.has("okr:2024-03:ranking"))

	var nilCache *CacheService
	hit, err := nilCache.Get(ctx, "k", &[]string{})
	require.NoError(t, err)
	assert.False(t, hit)
	nilCache.InvalidateMonth(ctx, march())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "okr:2024-03:ranking", rankingCacheKey(march()))
	assert.Equal(t, "okr:2024-03:summary:u7", summaryCacheKey("u7", march().AddDate(0, 0, 12)))
	assert.Equal(t, "okr:2024-03:department:software", departmentCacheKey("software", march()))
}

func TestReadThroughLoadsOnceAndSkipsErrors(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"u1", "u2"}, nil
	}

	first, err := readThrough(ctx, cache, rankingCacheKey(march()), load)
	require.NoError(t, err)
	second, err := readThrough(ctx, cache, rankingCacheKey(march()), load)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)

	_, err = readThrough(ctx, cache, summaryCacheKey("u9", march()), func(context.Context) (*struct{}, error) {
		return nil, errStoreDown
	})
	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, repo.has(summaryCacheKey("u9", march())))

	var disabled *CacheService
	_, err = readThrough(ctx, disabled, rankingCacheKey(march()), load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}
