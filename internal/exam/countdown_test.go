package exam

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestCountdownExpiresOnce verifies onExpire runs once at the deadline.
func TestCountdownExpiresOnce(t *testing.T) {
	var fired atomic.Int32
	c := StartCountdown(time.Now().Add(30*time.Millisecond), func() { fired.Add(1) }, WithTick(5*time.Millisecond))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not expire")
	}
	c.Finish()
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected a single expiry, got %d", got)
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected no remaining time, got %v", c.Remaining())
	}
}

// TestCountdownFinishRacesExpiry verifies concurrent finishes submit once.
func TestCountdownFinishRacesExpiry(t *testing.T) {
	var fired atomic.Int32
	c := StartCountdown(time.Now().Add(5*time.Millisecond), func() { fired.Add(1) }, WithTick(time.Millisecond))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Finish()
		}()
	}
	wg.Wait()
	<-c.Done()

	if got := fired.Load(); got != 1 {
		t.Fatalf("expected a single expiry, got %d", got)
	}
}

// TestCountdownStopSuppressesExpiry verifies Stop never runs onExpire.
func TestCountdownStopSuppressesExpiry(t *testing.T) {
	var fired atomic.Int32
	c := StartCountdown(time.Now().Add(20*time.Millisecond), func() { fired.Add(1) }, WithTick(5*time.Millisecond))
	c.Stop()
	<-c.Done()

	time.Sleep(40 * time.Millisecond)
	c.Finish()
	if got := fired.Load(); got != 0 {
		t.Fatalf("expected no expiry after Stop, got %d", got)
	}
}

// TestCountdownTicks verifies tick callbacks report decreasing time.
func TestCountdownTicks(t *testing.T) {
	var mu sync.Mutex
	var seen []time.Duration
	c := StartCountdown(time.Now().Add(100*time.Millisecond), nil,
		WithTick(10*time.Millisecond),
		WithOnTick(func(remaining time.Duration) {
			mu.Lock()
			seen = append(seen, remaining)
			mu.Unlock()
		}),
	)
	<-c.Done()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 2 {
		t.Fatalf("expected several ticks, got %d", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] > seen[i-1] {
			t.Fatalf("remaining time increased between ticks: %v then %v", seen[i-1], seen[i])
		}
	}
}

// TestCountdownPastDeadline verifies an already expired deadline fires immediately.
func TestCountdownPastDeadline(t *testing.T) {
	done := make(chan struct{})
	StartCountdown(time.Now().Add(-time.Minute), func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expired countdown did not fire")
	}
}
