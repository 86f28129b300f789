// Per-IP rate limiting for the command endpoints, so a misbehaving
// client can't hammer the engine lock with clicks. Fixed window,
// in memory.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows maxRate requests per window per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxRate int
	window  time.Duration
}

type bucket struct {
	remaining int
	windowAt  time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per
// window.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		maxRate: maxRate,
		window:  window,
	}
	go func() {
		for {
			time.Sleep(10 * rl.window)
			rl.cleanup()
		}
	}()
	return rl
}

// Allow reports whether ip may make another request right now.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.windowAt) >= rl.window {
		rl.buckets[ip] = &bucket{remaining: rl.maxRate - 1, windowAt: now}
		return true
	}

	if b.remaining > 0 {
		b.remaining--
		return true
	}
	return false
}

// RetryAfter returns whole seconds until ip's window resets.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return 0
	}
	remaining := rl.window - time.Since(b.windowAt)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, b := range rl.buckets {
		if now.Sub(b.windowAt) > 2*rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// clientIP extracts the caller's address, honoring the first entry of
// X-Forwarded-For when a proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware wraps a handler, answering 429 once the caller's
// window is spent.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
