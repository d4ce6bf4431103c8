package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupThreshold = 500
	limiterMaxIdle          = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client IP and prunes idle
// buckets once the map grows past limiterCleanupThreshold.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	r       rate.Limit
	burst   int
}

func newClientLimiters(r rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		r:       r,
		burst:   burst,
	}
}

func (l *clientLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.clients) > limiterCleanupThreshold {
		cutoff := now.Add(-limiterMaxIdle)
		for key, entry := range l.clients {
			if entry.lastSeen.Before(cutoff) {
				delete(l.clients, key)
			}
		}
	}
	entry, ok := l.clients[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.r, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// limitWrites throttles state-changing requests per client IP. Reads pass
// through untouched.
func (s *Server) limitWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiters == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if !s.limiters.allow(c.ClientIP()) {
			s.metrics.throttled.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
