package token

import (
	"context"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"sync"
	"time"
)

const (
	// Issued tokens are assumed valid for this long, the lifetime returned by the issuer is not used
	DefaultTTL = 3600 * time.Second

	refreshKey = "token"
)

// Cache provides a bearer token to API clients. The token is persisted in a Store shared by all processes
// and held locally after the first successful call. A locally held token is returned without an expiry check,
// Reset must be called to start over, e.g. at the beginning of each batch.
type Cache struct {
	store  Store
	issuer Issuer
	clock  clock.Clock
	ttl    time.Duration
	logger *zap.SugaredLogger

	mu    sync.Mutex
	local string

	refresh singleflight.Group
}

func NewCache(store Store, issuer Issuer, clk clock.Clock, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		issuer: issuer,
		clock:  clk,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Cache) Token(ctx context.Context) (string, error) {
	if token := c.getLocal(); token != "" {
		return token, nil
	}

	// Concurrent callers share a single lookup and authentication, the cancellation of one caller
	// must not fail the others
	detached := context.WithoutCancel(ctx)
	result, err, _ := c.refresh.Do(refreshKey, func() (interface{}, error) {
		return c.resolve(detached)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Reset drops the locally held token, the next call checks the store again
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = ""
}

func (c *Cache) resolve(ctx context.Context) (string, error) {
	if token := c.getLocal(); token != "" {
		return token, nil
	}

	cached, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Warnw("unable to read cached token, authenticating", zap.Error(err))
		cached = nil
	}

	now := c.clock.Now()
	if cached != nil && cached.Value != "" && !now.After(cached.ExpiresAt) {
		c.setLocal(cached.Value)
		return cached.Value, nil
	}

	c.logger.Debugw("obtaining fresh token")
	value, err := c.issuer.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	fresh := CachedToken{
		Value:     value,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.store.Set(ctx, fresh); err != nil {
		c.logger.Warnw("unable to persist token", zap.Error(err))
	}

	c.setLocal(value)
	return value, nil
}

func (c *Cache) getLocal() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local
}

func (c *Cache) setLocal(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = token
}
