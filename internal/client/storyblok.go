package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"carcatalog/content/internal/config"
	"carcatalog/content/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

var (
	ErrNotFound    = errors.New("story not found")
	ErrRateLimited = errors.New("content API rate limit exceeded")
)

const defaultBackoff = 10 * time.Second

// StoryblokClient is the narrow view of the content API used by the catalog
type StoryblokClient interface {
	List(ctx context.Context, prefix string, opts domain.ListOptions) (*domain.StoryList, error)
	GetByPath(ctx context.Context, path string, opts domain.GetOptions) (*domain.StoryEnvelope, error)
}

// Storyblok talks to the Storyblok CDN API over HTTP
type Storyblok struct {
	rl         ratelimit.Limiter
	config     config.StoryblokConfig
	httpClient *resty.Client

	// Circuit breaker for 429 responses
	circuitBreakerMutex sync.RWMutex
	blockedUntil        time.Time
}

func NewStoryblokClient(cfg config.StoryblokConfig) *Storyblok {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
		log.Infof("🔗 Using proxy: %s", cfg.Proxy)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &Storyblok{
		rl:         rl,
		config:     cfg,
		httpClient: client,
	}
}

// List returns every story whose full slug starts with prefix
func (c *Storyblok) List(ctx context.Context, prefix string, opts domain.ListOptions) (*domain.StoryList, error) {
	params := c.baseParams(opts.Version)
	params["starts_with"] = prefix
	if c.config.PerPage > 0 {
		params["per_page"] = strconv.Itoa(c.config.PerPage)
	}
	if opts.ExcludingSlugs != "" {
		params["excluding_slugs"] = opts.ExcludingSlugs
	}
	if opts.WithTag != "" {
		params["with_tag"] = opts.WithTag
	}

	var result domain.StoryList
	if err := c.get(ctx, "/cdn/stories", params, &result); err != nil {
		return nil, fmt.Errorf("failed to list stories under %s: %w", prefix, err)
	}

	if result.Stories == nil {
		result.Stories = []domain.Entry{}
	}

	log.Debugf("Listed %d stories under %s", len(result.Stories), prefix)
	return &result, nil
}

// GetByPath returns the story stored at the given full slug
func (c *Storyblok) GetByPath(ctx context.Context, path string, opts domain.GetOptions) (*domain.StoryEnvelope, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, fmt.Errorf("empty story path")
	}

	var result domain.StoryEnvelope
	if err := c.get(ctx, "/cdn/stories/"+path, c.baseParams(opts.Version), &result); err != nil {
		return nil, fmt.Errorf("failed to fetch story %s: %w", path, err)
	}

	log.Debugf("Fetched story %s", path)
	return &result, nil
}

// Close releases idle connections
func (c *Storyblok) Close() error {
	return c.httpClient.Close()
}

func (c *Storyblok) baseParams(version string) map[string]string {
	if version == "" {
		version = c.config.Version
	}
	if version == "" {
		version = domain.VersionPublished
	}
	return map[string]string{
		"token":   c.config.Token,
		"version": version,
	}
}

func (c *Storyblok) get(ctx context.Context, url string, params map[string]string, result any) error {
	if remaining := c.remainingBlock(); remaining > 0 {
		log.Debugf("🚫 Request blocked by circuit breaker. Remaining time: %v", remaining.Round(time.Second))
		return fmt.Errorf("%w: requests disabled for %v more", ErrRateLimited, remaining.Round(time.Second))
	}

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode() == http.StatusTooManyRequests:
		c.triggerCircuitBreaker(retryAfter(resp.Header().Get("Retry-After")))
		return ErrRateLimited
	case resp.IsError():
		return fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return nil
}

func (c *Storyblok) remainingBlock() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.blockedUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Storyblok) triggerCircuitBreaker(delay time.Duration) {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.blockedUntil = time.Now().Add(delay)
	log.Warnf("🚫 Circuit breaker activated! Requests disabled until %v",
		c.blockedUntil.Format("15:04:05"))
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return defaultBackoff
	}
	return time.Duration(seconds) * time.Second
}
