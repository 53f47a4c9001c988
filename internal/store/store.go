// Package store keeps the materialized brand/model tree in memory and serves
// lookups from it. The tree is loaded lazily on first access and replaced
// wholesale on refresh.
package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"carcatalog/content/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	ErrBrandNotFound = errors.New("brand not found")
	ErrDuplicateSlug = errors.New("slug already in use")
	ErrInvalidSlug   = errors.New("slug is required")
)

const loadKey = "brands"

// Source produces a complete brand tree
type Source interface {
	ListAllBrands(ctx context.Context) ([]*domain.Brand, error)
}

type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Store is the catalog cache. Operations never return errors: a failure is
// recorded in the error slot (LastError) and the operation returns nil,
// an empty collection or false.
//
// Returned brands and models are shared with the cache and must be treated
// as read-only.
type Store struct {
	source Source
	group  singleflight.Group
	now    func() time.Time

	mu            sync.RWMutex
	brands        []*domain.Brand
	categories    []domain.Category
	status        Status
	loaded        bool
	lastErr       error
	selectedBrand *domain.Brand
	selectedModel *domain.Model
	lastID        int64

	inFlight atomic.Int32
	// started counts the source calls made so far
	started atomic.Uint64
}

type Option func(*Store)

// WithCategories replaces the default category list
func WithCategories(categories []domain.Category) Option {
	return func(s *Store) {
		s.categories = append([]domain.Category(nil), categories...)
	}
}

// WithClock sets the time source used for provisional identifiers
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(source Source, opts ...Option) *Store {
	s := &Store{
		source:     source,
		now:        time.Now,
		brands:     []*domain.Brand{},
		categories: append([]domain.Category(nil), domain.DefaultCategories...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports the state of the materialized tree
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsLoading reports whether any store operation is in progress
func (s *Store) IsLoading() bool {
	return s.inFlight.Load() > 0
}

// LastError returns the last recorded failure, nil if none
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) SelectedBrand() *domain.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedBrand
}

func (s *Store) SelectedModel() *domain.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedModel
}

// Refresh reloads the whole tree from the source, sharing the in-flight
// load with any concurrent caller. It returns nil on failure; the previous
// tree is kept in that case.
func (s *Store) Refresh(ctx context.Context) []*domain.Brand {
	defer s.track()()

	if err := s.load(ctx, true); err != nil {
		return nil
	}
	return s.snapshot()
}

// Clear drops the tree and the selection, returning the store to Empty
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brands = []*domain.Brand{}
	s.loaded = false
	s.status = StatusEmpty
	s.lastErr = nil
	s.selectedBrand = nil
	s.selectedModel = nil
}

// GetAllCategories returns the display categories
func (s *Store) GetAllCategories() []domain.Category {
	defer s.track()()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// track marks an operation as in flight until the returned func is called
func (s *Store) track() func() {
	s.inFlight.Add(1)
	return func() { s.inFlight.Add(-1) }
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// ensureLoaded loads the tree while the collection is empty and no load has
// succeeded yet
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.hasTree() {
		return nil
	}
	return s.load(ctx, false)
}

// hasTree reports whether reads can be served without loading
func (s *Store) hasTree() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded || len(s.brands) > 0
}

// load runs at most one aggregation at a time. The aggregation itself is
// detached from the caller's cancellation so that a caller giving up does
// not fail the others waiting on it.
//
// A forced load only accepts an aggregation that called the source after
// load was entered; joining one already in flight is followed by another.
func (s *Store) load(ctx context.Context, force bool) error {
	after := s.started.Load()

	for {
		ch := s.group.DoChan(loadKey, func() (any, error) {
			return s.aggregate(ctx, force)
		})

		select {
		case <-ctx.Done():
			s.fail(ctx.Err())
			return ctx.Err()
		case res := <-ch:
			if seq, _ := res.Val.(uint64); force && seq <= after {
				continue
			}
			return res.Err
		}
	}
}

// aggregate is the body of one load. It returns the sequence number of its
// source call, 0 when the load was skipped.
func (s *Store) aggregate(ctx context.Context, force bool) (uint64, error) {
	s.mu.Lock()
	if !force && (s.loaded || len(s.brands) > 0) {
		s.mu.Unlock()
		return 0, nil
	}
	s.status = StatusLoading
	s.mu.Unlock()

	seq := s.started.Add(1)
	started := time.Now()
	brands, err := s.source.ListAllBrands(context.WithoutCancel(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusError
		s.lastErr = err
		log.Errorf("❌ Catalog load failed: %v", err)
		return seq, err
	}

	if brands == nil {
		brands = []*domain.Brand{}
	}
	s.brands = brands
	s.loaded = true
	s.status = StatusLoaded
	s.lastErr = nil
	s.reselect()

	log.Infof("✅ Catalog loaded: %d brands in %v", len(brands), time.Since(started).Round(time.Millisecond))
	return seq, nil
}

// reselect points the selection cursors at the matching records of the new
// tree, clearing a cursor whose record is gone. Caller holds s.mu.
func (s *Store) reselect() {
	if s.selectedBrand != nil {
		s.selectedBrand = s.findBrandBySlug(s.selectedBrand.Slug)
	}
	if s.selectedModel != nil {
		brandSlug, modelSlug := splitModelPath(s.selectedModel.Path)
		s.selectedModel = nil
		if brand := s.findBrandBySlug(brandSlug); brand != nil {
			s.selectedModel = findModelBySlug(brand, modelSlug)
		}
	}
}

func (s *Store) snapshot() []*domain.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Brand{}, s.brands...)
}

// nextID returns a millisecond clock value, bumped so that it never repeats.
// Caller holds s.mu.
func (s *Store) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}
