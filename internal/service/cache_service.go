package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/camp-schedule-api/internal/models"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
)

// DayStateCacheRepository abstracts the shared store renderers read published days from.
type DayStateCacheRepository interface {
	Get(ctx context.Context, campID, date string) (*models.DayState, error)
	Set(ctx context.Context, state *models.DayState, ttl time.Duration) error
	Delete(ctx context.Context, campID, date string) error
}

// CacheService mirrors published day states and records cache metrics.
type CacheService struct {
	repo       DayStateCacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo DayStateCacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get returns the cached day. A miss is not an error.
func (s *CacheService) Get(ctx context.Context, campID, date string) (*models.DayState, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	state, err := s.repo.Get(ctx, campID, date)
	if err != nil {
		s.metrics.RecordCacheOperation(false)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, false, nil
		}
		s.logger.Warn("day state cache get failed", zap.String("camp_id", campID), zap.String("date", date), zap.Error(err))
		return nil, false, err
	}
	s.metrics.RecordCacheOperation(true)
	return state, true, nil
}

// Set mirrors a published day.
func (s *CacheService) Set(ctx context.Context, state *models.DayState) error {
	if !s.Enabled() || state == nil {
		return nil
	}
	if err := s.repo.Set(ctx, state, s.defaultTTL); err != nil {
		s.logger.Warn("day state cache set failed", zap.String("camp_id", state.CampID), zap.String("date", state.Date), zap.Error(err))
		return err
	}
	return nil
}

// Invalidate drops a cached day.
func (s *CacheService) Invalidate(ctx context.Context, campID, date string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.Delete(ctx, campID, date); err != nil {
		s.logger.Warn("day state cache invalidate failed", zap.String("camp_id", campID), zap.String("date", date), zap.Error(err))
		return err
	}
	return nil
}
