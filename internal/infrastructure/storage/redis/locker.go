// Package redis provides the optional cross-instance register lock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/domain/cash"
	"colisflow/pkg/logger"
)

// Options configures the Redis connection and lock behavior.
type Options struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds how long a crashed holder can block a register.
	TTL time.Duration
	// Wait is how long Lock retries before reporting the register busy.
	Wait time.Duration
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

type obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

var _ cash.Locker = (*RegisterLocker)(nil)

// RegisterLocker serializes movement writes per register across instances.
type RegisterLocker struct {
	client obtainer
	ttl    time.Duration
	wait   time.Duration
}

// NewRegisterLocker wraps a Redis client.
func NewRegisterLocker(client *goredis.Client, opts Options) *RegisterLocker {
	return newRegisterLocker(redislock.New(client), opts)
}

func newRegisterLocker(client obtainer, opts Options) *RegisterLocker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Wait <= 0 {
		opts.Wait = 3 * time.Second
	}
	return &RegisterLocker{client: client, ttl: opts.TTL, wait: opts.Wait}
}

// LockKey is the Redis key guarding one register.
func LockKey(registerID id.ID) string {
	return "cash:register:" + registerID.String()
}

// Lock obtains the register lock, retrying every 50ms for up to Wait.
// A lock held elsewhere past Wait yields REGISTER_BUSY.
func (l *RegisterLocker) Lock(ctx context.Context, registerID id.ID) (func(), error) {
	key := LockKey(registerID)
	retries := int(l.wait / (50 * time.Millisecond))

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.Warn(ctx, "register lock not obtained", "register_id", registerID, "key", key)
		return nil, apperror.NewRegisterBusy(registerID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("obtain register lock: %w", err)
	}

	return func() {
		// Background context: release even when the request was cancelled.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn(ctx, "register lock release failed", "key", key, "error", err)
		}
	}, nil
}
