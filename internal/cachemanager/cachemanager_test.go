package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache[V any] struct {
	mock.Mock
}

func (m *mockCache[V]) Get(ctx context.Context, key string) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCache[V]) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCache[V]) Delete(ctx context.Context, keys ...string) {
	m.Called(ctx, keys)
}

func (m *mockCache[V]) Flush(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockCache[V]) Len() int {
	return m.Called().Int(0)
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, []int]("rows", DefaultExpiration, DefaultCleanupInterval)

	_, ok := cache.Get(ctx, "k")
	require.False(t, ok)

	cache.Set(ctx, "k", []int{1, 2}, DefaultExpiration)
	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("rows", DefaultExpiration, DefaultCleanupInterval)

	cache.Set(ctx, "short", 1, time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("rows", DefaultExpiration, DefaultCleanupInterval)

	_, ok := cache.GetWithRefresh(ctx, "k", time.Minute)
	require.False(t, ok)

	cache.Set(ctx, "k", 7, time.Minute)
	v, ok := cache.GetWithRefresh(ctx, "k", time.Hour)
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("rows", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", 1, 0)
	cache.Set(ctx, "b", 2, 0)
	cache.Set(ctx, "c", 3, 0)

	cache.Delete(ctx)
	cache.Delete(ctx, "a")
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
	require.Equal(t, 2, cache.Len())

	cache.Flush(ctx)
	require.Zero(t, cache.Len())
}

type typedKey string

func TestInMemoryCacheManager_TypedKeys(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[typedKey, string]("views", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, typedKey("x"), "y", 0)
	v, ok := cache.Get(ctx, "x")
	require.True(t, ok)
	require.Equal(t, "y", v)
}

func TestReadThroughCache_Hit(t *testing.T) {
	ctx := context.Background()
	m := &mockCache[[]int]{}
	m.On("Get", ctx, "k").Return([]int{1}, true).Once()

	calls := 0
	rt := NewReadThroughCache[string, []int, int](m, func(context.Context, int) ([]int, error) {
		calls++
		return nil, nil
	}, false)

	got, err := rt.Get(ctx, "k", 0, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{1}, got)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	ctx := context.Background()
	m := &mockCache[[]int]{}
	m.On("GetWithRefresh", ctx, "k", time.Minute).Return([]int(nil), false).Once()
	m.On("Set", ctx, "k", []int{4}, time.Minute).Once()

	rt := NewReadThroughCache[string, []int, int](m, func(_ context.Context, in int) ([]int, error) {
		return []int{in}, nil
	}, false)

	got, err := rt.GetWithRefresh(ctx, "k", 4, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{4}, got)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	m := &mockCache[[]int]{}
	m.On("Get", ctx, "k").Return([]int(nil), false).Once()

	boom := errors.New("boom")
	rt := NewReadThroughCache[string, []int, int](m, func(context.Context, int) ([]int, error) {
		return nil, boom
	}, false)

	_, err := rt.Get(ctx, "k", 0, time.Minute)
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	m := &mockCache[[]int]{}
	rt := NewReadThroughCache[string, []int, int](m, func(_ context.Context, in int) ([]int, error) {
		return []int{in, in}, nil
	}, true)

	got, err := rt.Get(context.Background(), "k", 2, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, got)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	m := &mockCache[[]int]{}
	m.On("Flush", ctx).Once()

	rt := NewReadThroughCache[string, []int, int](m, nil, false)
	rt.Invalidate(ctx)
	m.AssertExpectations(t)
}
