package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, 30*time.Second), mr
}

func lockers(t *testing.T) map[string]Locker {
	redisLocker, _ := newRedisLocker(t)
	return map[string]Locker{
		"local": NewLocalLocker(),
		"redis": redisLocker,
	}
}

func TestLockerMutualExclusion(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				inside  int
				maxSeen int
			)
			for i := 0; i < 6; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "table:1")
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()

					time.Sleep(5 * time.Millisecond)

					mu.Lock()
					inside--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestLockerTimesOut(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "order:1")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = l.Lock(ctx, "order:1")
			assert.ErrorIs(t, err, context.DeadlineExceeded)

			// other keys are independent
			other, err := l.Lock(context.Background(), "order:2")
			require.NoError(t, err)
			other()
		})
	}
}

func TestLockerUnlockIsIdempotent(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "payment:1")
			require.NoError(t, err)
			unlock()
			unlock()

			again, err := l.Lock(context.Background(), "payment:1")
			require.NoError(t, err)
			again()
		})
	}
}

func TestRedisLockerOnlyOwnerReleases(t *testing.T) {
	l, mr := newRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "table:9")
	require.NoError(t, err)

	// simulate expiry and another holder taking over
	mr.Del("restopos:lock:table:9")
	require.NoError(t, mr.Set("restopos:lock:table:9", "someone-else"))

	unlock()
	got, err := mr.Get("restopos:lock:table:9")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestLockKeysReportsBusyAsConflict(t *testing.T) {
	l := NewLocalLocker()
	hold, err := l.Lock(context.Background(), "table:busy")
	require.NoError(t, err)
	defer hold()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lockKeys(ctx, l, "order:1", "table:busy")
	assert.ErrorIs(t, err, ErrConflict)

	// order:1 was released when the second key failed
	unlock, err := l.Lock(context.Background(), "order:1")
	require.NoError(t, err)
	unlock()
}

func TestLockKeysDeduplicates(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := lockKeys(context.Background(), l, "table:1", "order:1", "table:1")
	require.NoError(t, err)
	unlock()
	assert.Empty(t, l.locks)
}
