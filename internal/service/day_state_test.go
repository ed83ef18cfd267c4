package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-schedule-api/internal/models"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
)

type dayStateCacheStub struct {
	states map[string]*models.DayState
	ttl    time.Duration
	getErr error
}

func (s *dayStateCacheStub) Get(ctx context.Context, campID, date string) (*models.DayState, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	state, ok := s.states[dayKey(campID, date)]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return state, nil
}

func (s *dayStateCacheStub) Set(ctx context.Context, state *models.DayState, ttl time.Duration) error {
	if s.states == nil {
		s.states = make(map[string]*models.DayState)
	}
	s.states[dayKey(state.CampID, state.Date)] = state
	s.ttl = ttl
	return nil
}

func (s *dayStateCacheStub) Delete(ctx context.Context, campID, date string) error {
	delete(s.states, dayKey(campID, date))
	return nil
}

func TestDayStateStoreReplace(t *testing.T) {
	store := NewDayStateStore()
	_, ok := store.Get("camp-1", "2026-07-01")
	assert.False(t, ok)

	first := &models.DayState{CampID: "camp-1", Date: "2026-07-01"}
	second := &models.DayState{CampID: "camp-1", Date: "2026-07-01"}
	store.Replace(first)
	store.Replace(second)
	store.Replace(nil)

	got, ok := store.Get("camp-1", "2026-07-01")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.False(t, store.Has("camp-1", "2026-07-02"))
}

func TestHydrationGateWait(t *testing.T) {
	gate := NewHydrationGate()
	assert.False(t, gate.Ready())
	assert.False(t, gate.Wait(context.Background(), 10*time.Millisecond))
	assert.False(t, gate.Wait(context.Background(), 0))

	go func() {
		time.Sleep(5 * time.Millisecond)
		gate.MarkReady()
	}()
	assert.True(t, gate.Wait(context.Background(), time.Second))
	gate.MarkReady()
	assert.True(t, gate.Ready())
}

func TestHydrationGateWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, NewHydrationGate().Wait(ctx, time.Second))
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &dayStateCacheStub{}
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Hour, nil, true)

	_, hit, err := cache.Get(context.Background(), "camp-1", "2026-07-01")
	require.NoError(t, err)
	assert.False(t, hit)

	state := &models.DayState{CampID: "camp-1", Date: "2026-07-01"}
	require.NoError(t, cache.Set(context.Background(), state))
	assert.Equal(t, time.Hour, repo.ttl)

	got, hit, err := cache.Get(context.Background(), "camp-1", "2026-07-01")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, state, got)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)

	require.NoError(t, cache.Invalidate(context.Background(), "camp-1", "2026-07-01"))
	_, hit, _ = cache.Get(context.Background(), "camp-1", "2026-07-01")
	assert.False(t, hit)
}

func TestCacheServiceDisabledAndFailures(t *testing.T) {
	disabled := NewCacheService(&dayStateCacheStub{}, nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	_, hit, err := disabled.Get(context.Background(), "camp-1", "2026-07-01")
	assert.NoError(t, err)
	assert.False(t, hit)

	var nilCache *CacheService
	assert.NoError(t, nilCache.Set(context.Background(), &models.DayState{}))

	broken := NewCacheService(&dayStateCacheStub{getErr: errors.New("redis down")}, nil, 0, nil, true)
	_, hit, err = broken.Get(context.Background(), "camp-1", "2026-07-01")
	assert.Error(t, err)
	assert.False(t, hit)
}
