package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 // <= 0 disables limiting
	BurstSize         int
	Logger            *zap.Logger
}

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastScan time.Time
	now      func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 5 * time.Minute,
		now:     time.Now,
	}
}

// allow reports whether key may proceed. Idle clients are dropped while
// scanning at most once per idleTTL.
func (cl *clientLimiter) allow(key string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if now.Sub(cl.lastScan) > cl.idleTTL {
		for k, c := range cl.clients {
			if now.Sub(c.lastSeen) > cl.idleTTL {
				delete(cl.clients, k)
			}
		}
		cl.lastScan = now
	}

	c, ok := cl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// RateLimit middleware limits each client IP. Health checks are exempt.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if config.RequestsPerSecond <= 0 {
			return next
		}
		limiter := newClientLimiter(config.RequestsPerSecond, config.BurstSize)
		limitHeader := strconv.FormatFloat(config.RequestsPerSecond, 'f', -1, 64)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			w.Header().Set("X-RateLimit-Limit", limitHeader)
			if !limiter.allow(clientIP) {
				config.Logger.Warn("Rate limit exceeded",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.String("client_ip", clientIP),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))

				w.Header().Set("Retry-After", "1")
				WriteError(w, errors.NewAppError(errors.ErrCodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, ip := range strings.Split(xff, ",") {
			ip = strings.TrimSpace(ip)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
