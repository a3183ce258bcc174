package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Locker provides a lock which is shared by all processes using the same redis instance
type Locker interface {
	// TryLock returns the lock value if the lock was acquired, or an empty string if it's held by someone else
	TryLock(ctx context.Context, key string, expiration time.Duration) (string, error)
	Unlock(ctx context.Context, key, value string) error
	// Refresh extends the expiration of a lock held with the given value
	Refresh(ctx context.Context, key, value string, expiration time.Duration) error
}

var ErrLockNotHeld = errors.New("lock is not held")

// Deletes the key only if it still holds the value set by this owner
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

func NewLocker(clients *Clients, logger *zap.SugaredLogger) Locker {
	if clients.Redis == nil {
		return NewLocalLocker()
	}
	return NewRedisLocker(clients.Redis, logger)
}

type redisLocker struct {
	client redis.UniversalClient
	logger *zap.SugaredLogger
}

func NewRedisLocker(client redis.UniversalClient, logger *zap.SugaredLogger) Locker {
	return &redisLocker{
		client: client,
		logger: logger,
	}
}

func (r *redisLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (string, error) {
	value := uuid.NewString()
	acquired, err := r.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return "", fmt.Errorf("unable to acquire lock %s: %w", key, err)
	}
	if !acquired {
		r.logger.Infow("lock is held by another process", "key", key)
		return "", nil
	}
	return value, nil
}

func (r *redisLocker) Unlock(ctx context.Context, key, value string) error {
	deleted, err := unlockScript.Run(ctx, r.client, []string{key}, value).Int()
	if err != nil {
		return fmt.Errorf("unable to release lock %s: %w", key, err)
	}
	if deleted == 0 {
		r.logger.Warnw("lock expired or is owned by another process", "key", key)
	}
	return nil
}

func (r *redisLocker) Refresh(ctx context.Context, key, value string, expiration time.Duration) error {
	refreshed, err := refreshScript.Run(ctx, r.client, []string{key}, value, expiration.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("unable to refresh lock %s: %w", key, err)
	}
	if refreshed == 0 {
		return fmt.Errorf("unable to refresh lock %s: %w", key, ErrLockNotHeld)
	}
	return nil
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]localLock
	now   func() time.Time
}

type localLock struct {
	value     string
	expiresAt time.Time
}

// NewLocalLocker returns a locker which only excludes holders within this process
func NewLocalLocker() Locker {
	return &localLocker{
		locks: make(map[string]localLock),
		now:   time.Now,
	}
}

func (l *localLocker) TryLock(_ context.Context, key string, expiration time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lock, ok := l.locks[key]; ok && now.Before(lock.expiresAt) {
		return "", nil
	}

	value := uuid.NewString()
	l.locks[key] = localLock{value: value, expiresAt: now.Add(expiration)}
	return value, nil
}

func (l *localLocker) Unlock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lock, ok := l.locks[key]; ok && lock.value == value {
		delete(l.locks, key)
	}
	return nil
}

func (l *localLocker) Refresh(_ context.Context, key, value string, expiration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok || lock.value != value || !l.now().Before(lock.expiresAt) {
		return fmt.Errorf("unable to refresh lock %s: %w", key, ErrLockNotHeld)
	}
	lock.expiresAt = l.now().Add(expiration)
	l.locks[key] = lock
	return nil
}
