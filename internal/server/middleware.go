package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RequestLogger attaches a request ID and emits one structured log line per
// request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := xid.New().String()
		c.Writer.Header().Set("X-Request-Id", id)

		c.Next()

		log.Info().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// pruneThreshold is the bucket-map size above which stale per-IP limiters
// are swept.
const pruneThreshold = 10000

// RateLimit applies a per-client-IP token bucket. Stale buckets are pruned
// opportunistically to bound memory.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	type bucket struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)
	if burst < 1 {
		burst = 1
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[ip] = b
		}
		b.lastSeen = time.Now()
		if len(buckets) > pruneThreshold {
			for k, v := range buckets {
				if time.Since(v.lastSeen) > 10*time.Minute {
					delete(buckets, k)
				}
			}
		}
		mu.Unlock()

		if !b.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error: "rate limit exceeded, slow down",
			})
			return
		}
		c.Next()
	}
}
