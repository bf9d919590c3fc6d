package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-client limiter kept in process memory.
// Suitable for single-instance deployments; multi-instance setups should use
// the Redis-backed variant.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*windowCounter
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: map[string]*windowCounter{},
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok || now.After(c.resetAt) {
		rl.clients[key] = &windowCounter{count: 1, resetAt: now.Add(rl.window)}
		rl.sweepLocked(now)
		return true
	}
	c.count++
	return c.count <= rl.limit
}

// sweepLocked drops expired counters so the map does not grow unbounded.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if len(rl.clients) < 10000 {
		return
	}
	for k, c := range rl.clients {
		if now.After(c.resetAt) {
			delete(rl.clients, k)
		}
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientKey(r), time.Now()) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the first X-Forwarded-For hop, falling back to the peer
// address without its port.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
