package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock is a controllable time source.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(cfg *Config) (*Limiter, *fixedClock) {
	cfg.CleanupInterval = 0
	clock := &fixedClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(&Config{
		Enabled: true,
		Endpoints: []EndpointConfig{
			{Path: "/skills/refresh", Method: "POST", Limit: 60, Window: time.Minute, Burst: 2},
		},
	})

	for i := 0; i < 2; i++ {
		ok, info := l.Allow("1.2.3.4", "/skills/refresh", "POST")
		require.True(t, ok, "request %d", i)
		assert.Equal(t, 60, info.Limit)
	}

	ok, info := l.Allow("1.2.3.4", "/skills/refresh", "POST")
	assert.False(t, ok)
	assert.Equal(t, time.Second, info.RetryAfter)

	clock.Advance(time.Second)
	ok, _ = l.Allow("1.2.3.4", "/skills/refresh", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	ok, _ := l.Allow("a", "/skills", "GET")
	require.True(t, ok)
	ok, _ = l.Allow("a", "/skills", "GET")
	assert.False(t, ok)

	ok, _ = l.Allow("b", "/skills", "GET")
	assert.True(t, ok)
	ok, _ = l.Allow("a", "/profile", "GET")
	assert.True(t, ok, "routes have separate buckets")
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     ParseIPList("10.0.0.1, 10.0.0.2"),
		Blacklist:     ParseIPList("10.0.0.9"),
	})

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("10.0.0.2", "/skills", "GET")
		assert.True(t, ok)
	}
	ok, _ := l.Allow("10.0.0.9", "/health", "GET")
	assert.False(t, ok)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Hour})
	for i := 0; i < 3; i++ {
		ok, info := l.Allow("a", "/skills", "GET")
		assert.True(t, ok)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	_, _ = l.Allow("a", "/skills", "GET")
	clock.Advance(2 * time.Hour)
	_, _ = l.Allow("b", "/skills", "GET")

	l.evictIdle(clock.Now().Add(-idleBucketTTL))
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "b:GET:/skills")
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("a", "/skills", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()
	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"health unlimited", "/health", "GET", 0, false},
		{"exact", "/recommendations/jobs", "POST", 20, false},
		{"prefix", "/pathway/majors", "GET", 60, false},
		{"method mismatch", "/skills/refresh", "GET", 0, true},
		{"unknown", "/profile", "PUT", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
