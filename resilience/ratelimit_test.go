package resilience

import (
	"sync"
	"testing"
	"time"
)

func TestNewRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})

	if rl.rate != 10 {
		t.Errorf("rate = %f, want 10", rl.rate)
	}
	if rl.burst != 20 {
		t.Errorf("burst = %f, want 20", rl.burst)
	}
	if tokens := rl.Tokens(); tokens != 20 {
		t.Errorf("initial tokens = %f, want full burst", tokens)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:  10,
		Burst: 5,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow() {
			t.Errorf("Allow() = false on attempt %d, want true", i)
		}
	}

	// Budget exhausted; the next request is rejected.
	if rl.Allow() {
		t.Error("Allow() = true after burst exhausted, want false")
	}
}

func TestRateLimiterAllowN(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:  10,
		Burst: 5,
	})

	if !rl.AllowN(3) {
		t.Error("AllowN(3) = false, want true")
	}
	if !rl.AllowN(2) {
		t.Error("AllowN(2) = false, want true")
	}
	if rl.AllowN(1) {
		t.Error("AllowN(1) = true when empty, want false")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:  1000,
		Burst: 5,
	})

	for i := 0; i < 5; i++ {
		rl.Allow()
	}

	time.Sleep(10 * time.Millisecond)

	if !rl.Allow() {
		t.Error("Allow() = false after refill, want true")
	}
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:  100,
		Burst: 10,
	})

	for i := 0; i < 10; i++ {
		rl.Allow()
	}
	if tokens := rl.Tokens(); tokens > 0.5 {
		t.Errorf("tokens after exhaust = %f, want ~0", tokens)
	}

	rl.Reset()

	if tokens := rl.Tokens(); tokens != 10 {
		t.Errorf("tokens after reset = %f, want 10", tokens)
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:  1000,
		Burst: 100,
	})

	var wg sync.WaitGroup
	allowed := 0
	var mu sync.Mutex

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Roughly the burst size, with a little slack for refill during
	// the run.
	if allowed < 90 || allowed > 110 {
		t.Errorf("concurrent allowed = %d, want ~100", allowed)
	}
}
