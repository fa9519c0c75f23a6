package lock_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"warehouse-slotting/internal/lock"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T) (*lock.RedisLocker, *redis.Client) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis lock test")
	}
	client, err := lock.Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	l := lock.NewRedisLocker(client)
	l.TTL = 5 * time.Second
	l.Poll = 10 * time.Millisecond
	return l, client
}

func TestRedisLocker_Exclusive(t *testing.T) {
	l, _ := newLocker(t)
	ctx := context.Background()
	whID := int(time.Now().UnixNano() % 1_000_000)

	unlock, err := l.Lock(ctx, whID)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, whID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	again, err := l.Lock(ctx, whID)
	require.NoError(t, err)
	again()
}

func TestRedisLocker_RenewsWhileHeld(t *testing.T) {
	l, _ := newLocker(t)
	l.TTL = 150 * time.Millisecond
	ctx := context.Background()
	whID := int(time.Now().UnixNano()%1_000_000) + 2_000_000

	unlock, err := l.Lock(ctx, whID)
	require.NoError(t, err)
	defer unlock()

	time.Sleep(500 * time.Millisecond)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, whID)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "a held lock outlives its TTL")
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	l, client := newLocker(t)
	ctx := context.Background()
	whID := int(time.Now().UnixNano()%1_000_000) + 1_000_000

	stale, err := l.Lock(ctx, whID)
	require.NoError(t, err)
	// The holder's key expires, as after a long pause.
	require.NoError(t, client.Del(ctx, fmt.Sprintf("slotting:lock:warehouse:%d", whID)).Err())

	current, err := l.Lock(ctx, whID)
	require.NoError(t, err)
	defer current()

	stale()

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, whID)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "an expired holder must not release the new one")
}
