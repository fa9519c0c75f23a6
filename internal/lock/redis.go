// Package lock provides a core.Locker shared by every process pointed at the
// same Redis instance.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"warehouse-slotting/internal/core"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL  = 2 * time.Minute
	DefaultPoll = 50 * time.Millisecond
)

// release deletes the key only while it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renew pushes the expiry out only while the key still holds our token.
var renew = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker holds one key per warehouse, set with NX and an expiry so a
// crashed holder cannot keep the warehouse locked past TTL. A live holder
// renews the key every TTL/3 until it unlocks.
type RedisLocker struct {
	client *redis.Client
	prefix string
	TTL    time.Duration
	Poll   time.Duration
}

var _ core.Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "slotting:lock:warehouse:", TTL: DefaultTTL, Poll: DefaultPoll}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) key(warehouseID int) string {
	return fmt.Sprintf("%s%d", l.prefix, warehouseID)
}

func (l *RedisLocker) Lock(ctx context.Context, warehouseID int) (func(), error) {
	key := l.key(warehouseID)
	token := uuid.NewString()
	ttl := l.TTL

	ticker := time.NewTicker(l.Poll)
	defer ticker.Stop()
	for {
		err := l.client.SetArgs(ctx, key, token, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
		if err == nil {
			break
		}
		if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(key, token, ttl, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The caller's ctx may already be done.
			_ = release.Run(context.Background(), l.client, []string{key}, token).Err()
		})
	}, nil
}

// keepAlive renews the key until stop is closed or the key is no longer ours.
func (l *RedisLocker) keepAlive(key, token string, ttl time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(max(ttl/3, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		n, err := renew.Run(context.Background(), l.client, []string{key}, token, ttl.Milliseconds()).Int()
		if err == nil && n == 0 {
			return
		}
	}
}
