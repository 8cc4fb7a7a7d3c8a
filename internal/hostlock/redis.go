package hostlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript pushes the expiry out only while the key carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker leases hosts with SET NX PX so several processes can share
// one server. A held lease is renewed every third of its TTL until it is
// released, so the TTL only bounds how long a crashed holder blocks the host.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker connects to redisURL. ttl bounds how long a crashed
// holder can keep a host leased.
func NewRedisLocker(redisURL string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisLockerWithClient(client, ttl), nil
}

// NewRedisLockerWithClient creates a locker from an existing client.
func NewRedisLockerWithClient(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{client: client, prefix: "idsexport:host:", ttl: ttl}
}

func (l *RedisLocker) key(host string) string {
	return l.prefix + host
}

func (l *RedisLocker) Acquire(ctx context.Context, host string, wait time.Duration) (Lease, error) {
	token := newToken()
	key := l.key(host)
	err := poll(ctx, host, wait, func() (bool, error) {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("acquire host lease: %w", err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	lease := &redisLease{
		locker:  l,
		key:     key,
		token:   token,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go lease.keepAlive(renewInterval(l.ttl))
	return lease, nil
}

func renewInterval(ttl time.Duration) time.Duration {
	return max(ttl/3, 10*time.Millisecond)
}

// holder returns the token currently holding host, or "" when it is free.
func (l *RedisLocker) holder(ctx context.Context, host string) (string, error) {
	token, err := l.client.Get(ctx, l.key(host)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup host lease: %w", err)
	}
	return token, nil
}

func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}

type redisLease struct {
	locker  *RedisLocker
	key     string
	token   string
	stop    chan struct{}
	stopped chan struct{}
	lost    atomic.Bool
	once    sync.Once
	err     error
}

func (r *redisLease) keepAlive(interval time.Duration) {
	defer close(r.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := renewScript.Run(ctx, r.locker.client, []string{r.key}, r.token, r.locker.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case errors.Is(err, redis.ErrClosed):
			return
		case err != nil:
			// Retry on the next tick; the remaining TTL covers a missed renewal.
		case n == 0:
			r.lost.Store(true)
			return
		}
	}
}

// Release stops renewal and frees the host if the lease is still ours.
func (r *redisLease) Release(ctx context.Context) error {
	r.once.Do(func() {
		close(r.stop)
		<-r.stopped
		if err := releaseScript.Run(ctx, r.locker.client, []string{r.key}, r.token).Err(); err != nil {
			r.err = fmt.Errorf("release host lease: %w", err)
			return
		}
		if r.lost.Load() {
			r.err = ErrLost
		}
	})
	return r.err
}
