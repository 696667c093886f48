package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/rolloff-rates/internal/config"
)

const (
	maxTrackedClients = 4096
	clientIdleTimeout = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters tracks at most max clients. Idle clients are swept first and
// the least recently seen client is dropped when the set is still full.
type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	max     int
	limit   rate.Limit
	burst   int
}

func newClientLimiters(capacity int, limit rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		max:     capacity,
		limit:   limit,
		burst:   burst,
	}
}

func (s *clientLimiters) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl, ok := s.clients[key]
	if !ok {
		if len(s.clients) >= s.max {
			s.evict(now)
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (s *clientLimiters) evict(now time.Time) {
	for k, cl := range s.clients {
		if now.Sub(cl.lastSeen) > clientIdleTimeout {
			delete(s.clients, k)
		}
	}
	for len(s.clients) >= s.max {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, cl := range s.clients {
			if oldestKey == "" || cl.lastSeen.Before(oldest) {
				oldestKey, oldest = k, cl.lastSeen
			}
		}
		delete(s.clients, oldestKey)
	}
}

func (s *clientLimiters) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimiter applies a token bucket per client IP to the routes it wraps.
// scope names the limited action in the rejection message. A zero config
// disables limiting.
func RateLimiter(cfg config.RateLimitConfig, scope string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	clients := newClientLimiters(maxTrackedClients, rate.Every(perRequest), cfg.Requests)

	message := scope + " rate limit exceeded"
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !clients.allow(c.RealIP(), time.Now()) {
				c.Response().Header().Set("Retry-After", retryAfter(perRequest))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"status": "error", "message": message})
			}
			return next(c)
		}
	}
}

func retryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
