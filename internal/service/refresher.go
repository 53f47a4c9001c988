package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carcatalog/content/internal/domain"
	"carcatalog/content/internal/domain/event"
	"carcatalog/content/internal/queue"
	"carcatalog/content/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMinIdleTime = 2 * time.Minute
	readErrorBackoff   = time.Second
)

var errRefreshFailed = errors.New("catalog refresh failed")

// CatalogRefresher is the part of the catalog store that the refresh worker
// drives
type CatalogRefresher interface {
	Refresh(ctx context.Context) []*domain.Brand
	LastError() error
}

// Refresher consumes refresh events from the queue and reloads the catalog
// for each of them. A failed refresh is left unacknowledged so that the
// auto-claimer redelivers it once it has been idle for minIdleTime.
type Refresher struct {
	catalog      CatalogRefresher
	queue        queue.Queue
	stateManager state.StateManager
	groupName    string
	minIdleTime  time.Duration
	stream       string
}

func NewRefresher(
	catalog CatalogRefresher,
	q queue.Queue,
	stateManager state.StateManager,
	groupName string,
	minIdleTime int,
) *Refresher {
	idle := time.Duration(minIdleTime) * time.Second
	if idle <= 0 {
		idle = defaultMinIdleTime
	}
	return &Refresher{
		catalog:      catalog,
		queue:        q,
		stateManager: stateManager,
		groupName:    groupName,
		minIdleTime:  idle,
		stream:       queue.StreamName(event.RefreshEventType),
	}
}

// Publish enqueues a refresh event and returns its message ID
func (r *Refresher) Publish(ctx context.Context, e *event.RefreshEvent) (string, error) {
	id, err := r.queue.AddEvent(ctx, e)
	if err != nil {
		return "", err
	}
	log.Infof("📨 Published refresh event %s (%s)", e.ID, e.Reason)
	return id, nil
}

// LastRefresh returns the status recorded by the most recent refresh, nil if
// none has run yet
func (r *Refresher) LastRefresh(ctx context.Context) (*domain.RefreshStatus, error) {
	return r.stateManager.GetLastRefresh(ctx)
}

// RunWorkers blocks until ctx is done
func (r *Refresher) RunWorkers(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup

	// Auto-claimer picks up refreshes that failed or whose consumer died
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(r.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.claimIdle(ctx)
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("refresh-worker-%d", workerID)
			log.Infof("🚀 Starting refresh worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Refresh worker %d stopping", workerID)
					return
				default:
				}

				msg, err := r.queue.GetEvent(ctx, r.groupName, consumer, r.stream)
				if err != nil {
					if ctx.Err() != nil {
						continue
					}
					log.Errorf("❌ Failed to get event from %s: %v", r.stream, err)
					sleep(ctx, readErrorBackoff)
					continue
				}

				if msg != nil {
					if err := r.processMessage(ctx, msg); err != nil {
						log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
					}
				}
			}
		}(i + 1)
	}

	wg.Wait()
	return nil
}

func (r *Refresher) claimIdle(ctx context.Context) {
	consumer := fmt.Sprintf("autoclaimer-refresh-%d", time.Now().UnixNano())
	claimed, err := r.queue.AutoClaim(ctx, r.groupName, consumer, r.stream, r.minIdleTime)
	if err != nil {
		log.Errorf("❌ Failed to auto-claim messages for %s: %v", r.stream, err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	log.Infof("🔄 Auto-claimed %d refresh events", len(claimed))
	for _, msg := range claimed {
		if err := r.processMessage(ctx, &msg); err != nil {
			log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
		}
	}
}

func (r *Refresher) processMessage(ctx context.Context, msg *redis.XMessage) error {
	decoded, err := event.Decode(msg.Values)
	if err != nil {
		return r.discard(ctx, msg, fmt.Errorf("message %s: %w", msg.ID, err))
	}

	switch e := decoded.(type) {
	case *event.RefreshEvent:
		if err := r.refresh(ctx, e); err != nil {
			return err
		}

	default:
		return r.discard(ctx, msg, fmt.Errorf("message %s: no handler for %s", msg.ID, decoded.EventType()))
	}

	if err := r.queue.AckEvent(ctx, r.stream, r.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (r *Refresher) refresh(ctx context.Context, e *event.RefreshEvent) error {
	if e.FullSlug != "" {
		log.Infof("🔄 Refreshing catalog: %s %s (%s)", e.FullSlug, e.Action, e.Reason)
	} else {
		log.Infof("🔄 Refreshing catalog (%s)", e.Reason)
	}

	started := time.Now()
	brands := r.catalog.Refresh(ctx)

	status := domain.RefreshStatus{
		EventID:  e.ID,
		At:       time.Now().UTC(),
		Duration: time.Since(started),
		Brands:   len(brands),
	}
	for _, b := range brands {
		status.Models += len(b.Models)
	}

	var refreshErr error
	if brands == nil {
		refreshErr = errRefreshFailed
		if err := r.catalog.LastError(); err != nil {
			refreshErr = fmt.Errorf("%w: %w", errRefreshFailed, err)
		}
		status.Error = refreshErr.Error()
	}

	if err := r.stateManager.SetLastRefresh(ctx, status); err != nil {
		log.Warnf("⚠️ Failed to record refresh status: %v", err)
	}

	if refreshErr != nil {
		return refreshErr
	}

	log.Infof("✅ Catalog refreshed: %d brands, %d models in %v",
		status.Brands, status.Models, status.Duration.Round(time.Millisecond))
	return nil
}

// discard acknowledges a message that can never be processed so that it is
// not redelivered forever
func (r *Refresher) discard(ctx context.Context, msg *redis.XMessage, cause error) error {
	if err := r.queue.AckEvent(ctx, r.stream, r.groupName, msg.ID); err != nil {
		log.Warnf("⚠️ Failed to ack malformed message %s: %v", msg.ID, err)
	}
	return cause
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
