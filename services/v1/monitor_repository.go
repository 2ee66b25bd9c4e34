package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"status-monitor/models"

	"github.com/go-redis/redis/v8"
)

// StateTTL keeps abandoned components from living in Redis forever.
const StateTTL = 7 * 24 * time.Hour

// RedisStateStore keeps one JSON MonitorState per component under "monitor:<id>".
type RedisStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: StateTTL}
}

func stateKey(componentID string) string {
	return fmt.Sprintf("monitor:%s", componentID)
}

func (s *RedisStateStore) GetState(ctx context.Context, componentID string) (models.MonitorState, bool, error) {
	var state models.MonitorState

	data, err := s.rdb.Get(ctx, stateKey(componentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return state, false, fmt.Errorf("decode state for %s: %w", componentID, err)
	}
	return state, true, nil
}

func (s *RedisStateStore) SaveState(ctx context.Context, componentID string, state models.MonitorState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", componentID, err)
	}
	return s.rdb.Set(ctx, stateKey(componentID), data, s.ttl).Err()
}
