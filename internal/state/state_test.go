package state

import (
	"context"
	"os"
	"testing"
	"time"

	"carcatalog/content/internal/domain"

	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("CATALOG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CATALOG_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}

	t.Cleanup(func() {
		rdb.Del(context.Background(), lastRefreshKey)
		rdb.Close()
	})
	rdb.Del(context.Background(), lastRefreshKey)
	return rdb
}

func TestLastRefreshRoundTrip(t *testing.T) {
	sm := NewRedisStateManager(newTestRedis(t))
	ctx := context.Background()

	last, err := sm.GetLastRefresh(ctx)
	if err != nil || last != nil {
		t.Fatalf("GetLastRefresh() on empty = %+v, %v; want nil, nil", last, err)
	}

	want := domain.RefreshStatus{
		EventID:  "evt-1",
		At:       time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Brands:   4,
		Models:   17,
		Error:    "",
	}
	if err := sm.SetLastRefresh(ctx, want); err != nil {
		t.Fatalf("SetLastRefresh() error = %v", err)
	}

	got, err := sm.GetLastRefresh(ctx)
	if err != nil {
		t.Fatalf("GetLastRefresh() error = %v", err)
	}
	if got == nil || got.EventID != want.EventID || !got.At.Equal(want.At) || got.Duration != want.Duration || got.Models != want.Models {
		t.Errorf("GetLastRefresh() = %+v, want %+v", got, want)
	}
}
