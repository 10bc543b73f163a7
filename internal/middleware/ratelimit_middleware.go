package middleware

import (
	"context"
	"sync"
	"time"
)

// LoginRateLimiter throttles failed admin logins per IP.
// Successful logins clear the counter.
type LoginRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewLoginRateLimiter allows limit failures per window for each IP.
func NewLoginRateLimiter(limit int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow reports whether ip may attempt another login.
func (r *LoginRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[ip]
	if !exists {
		return true
	}
	// Reset if window expired
	if r.now().Sub(info.firstAt) > r.window {
		delete(r.attempts, ip)
		return true
	}
	return info.count < r.limit
}

// Fail records a failed login from ip.
func (r *LoginRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Reset forgets the failures of ip.
func (r *LoginRateLimiter) Reset(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, ip)
}

// RetryAfter returns how long ip must wait before the window resets.
func (r *LoginRateLimiter) RetryAfter(ip string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.attempts[ip]
	if !exists {
		return 0
	}
	if d := r.window - r.now().Sub(info.firstAt); d > 0 {
		return d
	}
	return 0
}

// Cleanup drops expired entries every interval until ctx is done.
func (r *LoginRateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, ip)
				}
			}
			r.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
