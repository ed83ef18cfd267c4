package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-schedule-api/internal/models"
	appErrors "github.com/noah-isme/camp-schedule-api/pkg/errors"
)

// DayStateCacheRepository mirrors published day states into Redis for renderers.
type DayStateCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDayStateCacheRepository constructs a cache repository. A nil client disables it.
func NewDayStateCacheRepository(client *redis.Client, logger *zap.Logger) *DayStateCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DayStateCacheRepository{client: client, logger: logger}
}

// DayStateKey is the Redis key of a camp day.
func DayStateKey(campID, date string) string {
	return fmt.Sprintf("camp:%s:day:%s:state", campID, date)
}

// Get loads a cached day state.
func (r *DayStateCacheRepository) Get(ctx context.Context, campID, date string) (*models.DayState, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	key := DayStateKey(campID, date)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var state models.DayState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal day state for %s: %w", key, err)
	}
	return &state, nil
}

// Set stores the day state with the given TTL.
func (r *DayStateCacheRepository) Set(ctx context.Context, state *models.DayState, ttl time.Duration) error {
	if r.client == nil || state == nil {
		return nil
	}
	key := DayStateKey(state.CampID, state.Date)
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal day state for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.logger.Debug("day state cached", zap.String("key", key), zap.Int("bytes", len(payload)))
	return nil
}

// Delete drops the cached day.
func (r *DayStateCacheRepository) Delete(ctx context.Context, campID, date string) error {
	if r.client == nil {
		return nil
	}
	key := DayStateKey(campID, date)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *DayStateCacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
