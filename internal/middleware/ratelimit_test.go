package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(rate, burst int, clock *fakeClock) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		Rate:    rate,
		Window:  time.Minute,
		Burst:   burst,
		Cleanup: time.Hour,
		Now:     clock.Now,
	})
}

// ============================================================================
// NewRateLimiter Tests (Configuration)
// ============================================================================

func TestNewRateLimiter_DefaultConfig(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.rate != 100 || rl.window != time.Minute || rl.burst != 20 {
		t.Errorf("unexpected defaults: rate %d window %v burst %d", rl.rate, rl.window, rl.burst)
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

// ============================================================================
// Allow() Tests
// ============================================================================

func TestAllow_FirstRequest_StartsWithRatePlusBurst(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := newTestLimiter(10, 5, clock)
	defer rl.Stop()

	allowed, remaining, reset := rl.Allow("203.0.113.7")

	if !allowed {
		t.Error("first request should be allowed")
	}
	if remaining != 14 {
		t.Errorf("expected remaining 14, got %d", remaining)
	}
	if !reset.Equal(clock.Now().Add(time.Minute)) {
		t.Errorf("reset = %v", reset)
	}
}

func TestAllow_ExhaustsThenDenies(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(5, 3, newFakeClock())
	defer rl.Stop()

	count := 0
	for i := 0; i < 10; i++ {
		if ok, _, _ := rl.Allow("203.0.113.7"); ok {
			count++
		}
	}
	if count != 8 {
		t.Errorf("expected 8 allowed requests, got %d", count)
	}
}

func TestAllow_DifferentKeys_SeparateBuckets(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(1, 1, newFakeClock())
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("a")
	if ok, _, _ := rl.Allow("a"); ok {
		t.Error("a should be exhausted")
	}
	if ok, _, _ := rl.Allow("b"); !ok {
		t.Error("b should have its own bucket")
	}
}

func TestAllow_Refill(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := newTestLimiter(6, 1, clock)
	defer rl.Stop()

	for i := 0; i < 7; i++ {
		rl.Allow("k")
	}
	if ok, _, _ := rl.Allow("k"); ok {
		t.Fatal("should be exhausted")
	}

	// half a window refills half the rate
	clock.Advance(30 * time.Second)
	ok, remaining, _ := rl.Allow("k")
	if !ok || remaining != 2 {
		t.Errorf("partial refill: ok=%v remaining=%d, want true/2", ok, remaining)
	}

	clock.Advance(time.Minute)
	ok, remaining, _ = rl.Allow("k")
	if !ok || remaining != 6 {
		t.Errorf("full refill: ok=%v remaining=%d, want true/6", ok, remaining)
	}
}

func TestAllow_ConcurrentAccess_ThreadSafe(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(50, 10, newFakeClock())
	defer rl.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 60 {
		t.Errorf("expected exactly 60 allowed, got %d", allowedCount)
	}
}

func TestCleanup_RemovesStaleBuckets(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	rl := newTestLimiter(10, 1, clock)
	defer rl.Stop()

	rl.Allow("old")
	clock.Advance(90 * time.Second)
	rl.Allow("fresh")
	clock.Advance(40 * time.Second)

	rl.cleanupExpired()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["old"]; ok {
		t.Error("stale bucket should be removed")
	}
	if _, ok := rl.buckets["fresh"]; !ok {
		t.Error("fresh bucket should be kept")
	}
}

// ============================================================================
// RateLimit Middleware Tests
// ============================================================================

func TestRateLimitMiddleware_SetsHeadersAndDenies(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(2, 1, newFakeClock())
	defer rl.Stop()

	handler := &captureHandler{}
	mw := RateLimit(rl)(handler)

	var rr *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/sign-in", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr = httptest.NewRecorder()
		handler.called = false
		mw.ServeHTTP(rr, req)

		if i < 3 && rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}

	if rr.Code != http.StatusTooManyRequests || handler.called {
		t.Errorf("expected 429 without calling handler, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", rr.Header().Get("X-RateLimit-Limit"))
	}
	if v, err := strconv.Atoi(rr.Header().Get("Retry-After")); err != nil || v < 1 || v > 60 {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}
}

func TestRateLimitMiddleware_SameHostDifferentPortsShareBucket(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(1, 1, newFakeClock())
	defer rl.Stop()

	mw := RateLimit(rl)(&captureHandler{})
	codes := make([]int, 0, 3)
	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.1:2000", "10.0.0.1:3000"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/sign-in", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request from same host to be limited, got %v", codes)
	}
}

func TestRateLimitMiddleware_KeysByPrincipal(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(1, 1, newFakeClock())
	defer rl.Stop()

	mw := RateLimit(rl)(&captureHandler{})
	send := func(id string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/dreams", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		req = req.WithContext(WithPrincipal(req.Context(), &model.Principal{ID: id}))
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)
		return rr.Code
	}

	send("account:ada")
	send("account:ada")
	if code := send("account:ada"); code != http.StatusTooManyRequests {
		t.Errorf("ada should be limited, got %d", code)
	}
	if code := send("account:grace"); code != http.StatusOK {
		t.Errorf("grace on the same IP should pass, got %d", code)
	}
}
