package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter counts requests per user in fixed one-minute windows.
// Expired windows are swept at most once a minute so the map stays
// bounded by the set of recently active users.
type rateLimiter struct {
	perMinute int

	mu        sync.Mutex
	windows   map[string]*rateWindow
	lastSweep time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{perMinute: perMinute, windows: make(map[string]*rateWindow)}
}

func (l *rateLimiter) allow(user string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= time.Minute {
		for u, w := range l.windows {
			if now.Sub(w.start) >= time.Minute {
				delete(l.windows, u)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[user]
	if !ok || now.Sub(w.start) >= time.Minute {
		w = &rateWindow{start: now}
		l.windows[user] = w
	}
	w.count++
	return w.count <= l.perMinute
}

// RateLimit returns middleware that enforces a per-user per-minute
// request cap with an in-memory counter.
func RateLimit(perMinute int) gin.HandlerFunc {
	limiter := newRateLimiter(perMinute)

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == "" {
			c.Next()
			return
		}
		if !limiter.allow(user, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
