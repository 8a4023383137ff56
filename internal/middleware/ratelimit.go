package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmprep/simulado-backend/internal/response"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByClientIP counts requests per client address.
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByUser counts authenticated requests per user and falls back to the
// client address. It must run after RequireJWT.
func ByUser(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return "user:" + claims.Subject
	}
	return "ip:" + c.ClientIP()
}

// RateLimiter is a per-key token bucket refilled in whole intervals.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	interval time.Duration
	key      KeyFunc
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   int
	refilled time.Time
}

// NewRateLimiter allows rate requests per interval for each key.
func NewRateLimiter(rate int, interval time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByClientIP
	}
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		key:      key,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.rate, refilled: now}
		rl.buckets[key] = b
	}

	if periods := int(now.Sub(b.refilled) / rl.interval); periods > 0 {
		b.tokens = min(b.tokens+periods*rl.rate, rl.rate)
		b.refilled = b.refilled.Add(time.Duration(periods) * rl.interval)
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Middleware returns a Gin middleware that rejects requests over the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(rl.key(c)) {
			c.Header("Retry-After", strconv.Itoa(max(int(rl.interval.Seconds()), 1)))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-3 * rl.interval)
			for key, b := range rl.buckets {
				if b.refilled.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
