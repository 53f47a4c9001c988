package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"carcatalog/content/internal/config"
	"carcatalog/content/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

// newTestRedis connects to the server named by CATALOG_TEST_REDIS_ADDR and
// skips the test when it is unset or unreachable
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

	stream := StreamName(event.RefreshEventType)
	t.Cleanup(func() {
		rdb.Del(context.Background(), stream)
		rdb.Close()
	})
	rdb.Del(context.Background(), stream)
	return rdb
}

func TestStreamName(t *testing.T) {
	if got := StreamName(event.RefreshEventType); got != "catalog:stream:RefreshEvent" {
		t.Errorf("StreamName() = %q", got)
	}
}

func TestRedisQueueRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	q, err := NewRedisQueue(ctx, rdb, config.RedisConfig{ConsumerGroup: "catalog_test"})
	if err != nil {
		t.Fatalf("NewRedisQueue() error = %v", err)
	}
	// A second setup must tolerate the existing group
	if err := q.EnsureStreamsExist(ctx); err != nil {
		t.Fatalf("EnsureStreamsExist() error = %v", err)
	}

	e := event.NewRefreshEvent("test")
	id, err := q.AddEvent(ctx, e)
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	stream := StreamName(event.RefreshEventType)
	msg, err := q.GetEvent(ctx, "catalog_test", "consumer-1", stream)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if msg == nil || msg.ID != id {
		t.Fatalf("GetEvent() = %+v, want message %s", msg, id)
	}
	if msg.Values[event.FieldType] != event.RefreshEventType {
		t.Errorf("%s = %v", event.FieldType, msg.Values[event.FieldType])
	}

	decoded, err := event.Decode(msg.Values)
	if got, ok := decoded.(*event.RefreshEvent); err != nil || !ok || got.ID != e.ID {
		t.Errorf("Decode() = %v (%v), want event %s", decoded, err, e.ID)
	}

	// Unacked message is claimable once idle
	claimed, err := q.AutoClaim(ctx, "catalog_test", "claimer", stream, 0)
	if err != nil {
		t.Fatalf("AutoClaim() error = %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != id {
		t.Errorf("AutoClaim() = %+v, want [%s]", claimed, id)
	}

	if err := q.AckEvent(ctx, stream, "catalog_test", id); err != nil {
		t.Fatalf("AckEvent() error = %v", err)
	}
	claimed, err = q.AutoClaim(ctx, "catalog_test", "claimer", stream, 0)
	if err != nil || len(claimed) != 0 {
		t.Errorf("AutoClaim() after ack = %+v, %v; want none", claimed, err)
	}
}
