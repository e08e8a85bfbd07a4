package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

var (
	// ErrLockTimeout is returned by WithLock when the lock stays held by
	// another process until ctx is done.
	ErrLockTimeout = errors.New("timed out waiting for lock")
	// ErrLockNotHeld is returned when releasing a lock that expired or
	// now belongs to another holder.
	ErrLockNotHeld = errors.New("lock not held")
)

const lockPollInterval = 200 * time.Millisecond

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
	}, nil
}

// Ping checks that Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), value, ttl).Err()
}

// ClaimIdempotencyKey sets the key only if it is absent. It returns false
// when another caller already claimed it.
func (c *Client) ClaimIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, idempotencyKey(key), value, ttl).Result()
}

// GetIdempotencyKey returns the value stored under key and whether it exists
func (c *Client) GetIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// DeleteIdempotencyKey removes a claim so the operation can be retried
func (c *Client) DeleteIdempotencyKey(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, idempotencyKey(key)).Err()
}

func lockKey(name string) string {
	return fmt.Sprintf("lock:%s", name)
}

// AcquireLock tries once to take the named lock. On success it returns the
// token that identifies this holder to ReleaseLock.
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, lockKey(name), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseLock deletes the lock only while it still holds token
func (c *Client) ReleaseLock(ctx context.Context, name, token string) error {
	n, err := c.releaseScript.Run(ctx, c.rdb, []string{lockKey(name)}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock script failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLockNotHeld, name)
	}
	return nil
}

// WithLock waits for the lock, runs fn and releases the lock. The lock
// expires after ttl even if the holder dies. A failed release is reported
// alongside fn's result.
func (c *Client) WithLock(ctx context.Context, name string, ttl time.Duration, fn func() error) (err error) {
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	var token string
	for {
		var ok bool
		token, ok, err = c.AcquireLock(ctx, name, ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", name, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w %s: %v", ErrLockTimeout, name, ctx.Err())
		case <-ticker.C:
		}
	}

	defer func() {
		if rerr := c.ReleaseLock(context.Background(), name, token); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn()
}
