package exam

import (
	"sync"
	"time"
)

// DefaultTick is how often a countdown reports remaining time.
const DefaultTick = time.Second

// Countdown runs a deadline timer for one mock exam. OnExpire fires at most
// once, whether the deadline passes or Finish is called first.
type Countdown struct {
	deadline time.Time
	tick     time.Duration
	onTick   func(remaining time.Duration)
	onExpire func()

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// CountdownOption configures a Countdown.
type CountdownOption func(*Countdown)

// WithTick sets the tick interval.
func WithTick(d time.Duration) CountdownOption {
	return func(c *Countdown) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithOnTick registers a callback invoked on every tick with the remaining time.
func WithOnTick(fn func(remaining time.Duration)) CountdownOption {
	return func(c *Countdown) { c.onTick = fn }
}

// StartCountdown begins counting down to deadline. onExpire runs on the
// countdown goroutine, or on the caller's goroutine when Finish wins.
func StartCountdown(deadline time.Time, onExpire func(), opts ...CountdownOption) *Countdown {
	c := &Countdown{
		deadline: deadline,
		tick:     DefaultTick,
		onExpire: onExpire,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

func (c *Countdown) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	expiry := time.NewTimer(c.Remaining())
	defer expiry.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-expiry.C:
			c.fire()
			return
		case <-ticker.C:
			if c.onTick != nil {
				c.onTick(c.Remaining())
			}
		}
	}
}

func (c *Countdown) fire() {
	fired := false
	c.once.Do(func() {
		close(c.stop)
		fired = true
	})
	if fired && c.onExpire != nil {
		c.onExpire()
	}
}

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	return max(time.Until(c.deadline), 0)
}

// Finish ends the countdown early and runs onExpire unless it already ran.
func (c *Countdown) Finish() {
	c.fire()
}

// Stop ends the countdown without running onExpire. Use Done to wait for the
// goroutine to exit.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Done is closed once the countdown goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
