package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache() (*MemoryCache, *clock) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemoryCache()
	m.now = clk.Now
	return m, clk
}

func TestMemoryCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestCache()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "stats:1", "payload", time.Minute))
	value, err := m.Get(ctx, "stats:1")
	require.NoError(t, err)
	assert.Equal(t, "payload", value)

	clk.Advance(time.Minute)
	_, err = m.Get(ctx, "stats:1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestCache()

	require.NoError(t, m.Set(ctx, "a", "1", 0))
	require.NoError(t, m.Set(ctx, "b", "2", 0))
	require.NoError(t, m.Delete(ctx, "a", "b", "c"))

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_IncrementWindow(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestCache()

	for want := int64(1); want <= 3; want++ {
		got, err := m.IncrementWindow(ctx, "rl:127.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Later increments must not extend the window.
	clk.Advance(59 * time.Second)
	got, err := m.IncrementWindow(ctx, "rl:127.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)

	clk.Advance(time.Second)
	got, err = m.IncrementWindow(ctx, "rl:127.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryCache_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.IncrementWindow(ctx, "counter", time.Minute)
		}()
	}
	wg.Wait()

	value, err := m.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "50", value)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()

	type stat struct {
		TotalView int `json:"totalView"`
	}

	require.NoError(t, SetJSON(ctx, m, "stat", stat{TotalView: 7}, time.Minute))

	var out stat
	require.NoError(t, GetJSON(ctx, m, "stat", &out))
	assert.Equal(t, 7, out.TotalView)

	assert.ErrorIs(t, GetJSON(ctx, m, "other", &out), ErrMiss)
}

func TestNew_WithoutAddressUsesMemory(t *testing.T) {
	client, err := New(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, client)
}
