package middleware

import (
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTTL is how long an idle client keeps its bucket.
const idleTTL = 3 * time.Minute

type rateLimiter struct {
	clients     map[string]*client
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 100
	}
	return &rateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		now:     time.Now,
	}
}

// RateLimiter allows perMinute requests per client IP, refilled continuously.
func RateLimiter(perMinute int) gin.HandlerFunc {
	return newRateLimiter(perMinute).handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	delay := rl.reserve(c.ClientIP())
	if delay > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Rate limit exceeded",
			"retry_after": math.Ceil(delay.Seconds()),
		})
		c.Abort()
		return
	}
	c.Next()
}

// reserve takes a token for ip and returns how long the caller would have
// to wait, zero when the request may proceed.
func (rl *rateLimiter) reserve(ip string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > time.Minute {
		rl.cleanup(now)
	}

	cl, exists := rl.clients[ip]
	if !exists {
		cl = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return delay
	}
	return 0
}

func (rl *rateLimiter) cleanup(now time.Time) {
	for ip, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > idleTTL {
			delete(rl.clients, ip)
		}
	}
	rl.lastCleanup = now
}
