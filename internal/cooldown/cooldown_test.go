package cooldown

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	left, err := store.Remaining(ctx, "a")
	require.NoError(t, err)
	require.Zero(t, left)

	require.NoError(t, store.Start(ctx, "a", DefaultDuration))

	left, err = store.Remaining(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, DefaultDuration, left)

	left, err = store.Remaining(ctx, "b")
	require.NoError(t, err)
	require.Zero(t, left, "cooldown must be per key")

	now = now.Add(DefaultDuration - time.Second)
	left, err = store.Remaining(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, time.Second, left)

	now = now.Add(time.Second)
	left, err = store.Remaining(ctx, "a")
	require.NoError(t, err)
	require.Zero(t, left)
}

func TestMemoryStore_TryStart(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	left, ok, err := store.TryStart(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, left)

	now = now.Add(10 * time.Second)
	left, ok, err = store.TryStart(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 50*time.Second, left)

	_, ok, err = store.TryStart(ctx, "b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "reservations must be per key")

	require.NoError(t, store.Release(ctx, "a"))
	_, ok, err = store.TryStart(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = store.TryStart(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired deadlines can be taken again")
}

func TestMemoryStore_TryStartConcurrent(t *testing.T) {
	store := NewMemoryStore()

	var (
		wg  sync.WaitGroup
		won int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.TryStart(context.Background(), "a", time.Minute)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&won, 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), won)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	require.Error(t, store.Start(ctx, "a", time.Second))
	_, err := store.Remaining(ctx, "a")
	require.Error(t, err)
	_, _, err = store.TryStart(ctx, "a", time.Second)
	require.Error(t, err)
	require.Error(t, store.Release(ctx, "a"))
}

func TestCountdown(t *testing.T) {
	var got []int
	for v := range countdown(context.Background(), 3*time.Second, time.Millisecond) {
		got = append(got, v)
	}
	require.Equal(t, []int{3, 2, 1, 0}, got)
}

func TestCountdown_RoundsUp(t *testing.T) {
	var got []int
	for v := range countdown(context.Background(), 1500*time.Millisecond, time.Millisecond) {
		got = append(got, v)
	}
	require.Equal(t, []int{2, 1, 0}, got)
}

func TestCountdown_Zero(t *testing.T) {
	var got []int
	for v := range countdown(context.Background(), 0, time.Millisecond) {
		got = append(got, v)
	}
	require.Equal(t, []int{0}, got)
}

func TestCountdown_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := countdown(ctx, time.Hour, time.Hour)
	require.Equal(t, 3600, <-ch)
	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("countdown did not stop after cancel")
	}
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "true" {
		return
	}

	store, err := NewRedisStore(RedisConfig{Host: "localhost", Port: "6379"})
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	left, err := store.Remaining(ctx, key)
	require.NoError(t, err)
	require.Zero(t, left)

	require.NoError(t, store.Start(ctx, key, 5*time.Second))
	left, err = store.Remaining(ctx, key)
	require.NoError(t, err)
	require.Greater(t, left, 4*time.Second)

	left, ok, err := store.TryStart(ctx, key, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, left, 4*time.Second)

	require.NoError(t, store.Release(ctx, key))
	_, ok, err = store.TryStart(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, key))
}
