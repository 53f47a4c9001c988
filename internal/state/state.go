package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"carcatalog/content/internal/domain"

	"github.com/redis/go-redis/v9"
)

const lastRefreshKey = "catalog:refresh:last"

type StateManager interface {
	GetLastRefresh(ctx context.Context) (*domain.RefreshStatus, error)
	SetLastRefresh(ctx context.Context, status domain.RefreshStatus) error
}

type redisStateManager struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		key:         lastRefreshKey,
	}
}

// GetLastRefresh returns nil when no refresh has been recorded yet
func (s *redisStateManager) GetLastRefresh(ctx context.Context) (*domain.RefreshStatus, error) {
	val, err := s.redisClient.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last refresh status: %w", err)
	}

	var status domain.RefreshStatus
	if err := json.Unmarshal(val, &status); err != nil {
		return nil, fmt.Errorf("failed to parse last refresh status: %w", err)
	}

	return &status, nil
}

func (s *redisStateManager) SetLastRefresh(ctx context.Context, status domain.RefreshStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode refresh status: %w", err)
	}

	if err := s.redisClient.Set(ctx, s.key, data, 0).Err(); err != nil { // No expiration
		return fmt.Errorf("failed to set last refresh status: %w", err)
	}
	return nil
}
