package api

import (
	"net/http"
	"sync"
	"time"

	"runetick/config"
	"runetick/internal/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter is a token bucket per client IP refilling cfg.Requests tokens per cfg.Window.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration // visitors unseen for this long are forgotten
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(cfg config.RateLimitConfig, now func() time.Time) *ipLimiter {
	l := &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Inf,
		now:      now,
	}
	if cfg.Requests > 0 && cfg.Window > 0 {
		l.limit = rate.Every(cfg.Window / time.Duration(cfg.Requests))
		l.burst = cfg.Requests
		l.idle = 10 * cfg.Window
	}
	return l
}

func (l *ipLimiter) allow(ip string) bool {
	if l.limit == rate.Inf {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiter) middleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			m.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})
			return
		}
		c.Next()
	}
}
