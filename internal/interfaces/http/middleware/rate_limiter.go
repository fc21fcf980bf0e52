package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10_000
	clientIdleTTL     = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies a per-client limit and a global limit of 4x the
// per-client rate.
type IPRateLimiter struct {
	global *rate.Limiter
	perIP  map[string]*clientLimiter
	mu     sync.Mutex

	rps   rate.Limit
	burst int
	now   func() time.Time
}

// NewIPRateLimiter creates a new rate limiter
// rps: requests per second allowed per IP
// burst: maximum burst size per IP
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		global: rate.NewLimiter(rate.Limit(rps*4), burst*4),
		perIP:  make(map[string]*clientLimiter),
		rps:    rate.Limit(rps),
		burst:  burst,
		now:    time.Now,
	}
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	item, ok := l.perIP[ip]
	if !ok {
		if len(l.perIP) >= maxTrackedClients {
			l.cleanupLocked(now.Add(-clientIdleTTL))
		}
		item = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.perIP[ip] = item
	}
	item.lastSeen = now

	if !item.limiter.AllowN(now, 1) {
		return false
	}
	return l.global.AllowN(now, 1)
}

func (l *IPRateLimiter) cleanupLocked(threshold time.Time) {
	for ip, entry := range l.perIP {
		if entry.lastSeen.Before(threshold) {
			delete(l.perIP, ip)
		}
	}
}

// RateLimit middleware limits requests per client IP. onDrop may be nil.
func RateLimit(limiter *IPRateLimiter, onDrop func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientIP(r)) {
				if onDrop != nil {
					onDrop()
				}
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop or the remote address host.
func ClientIP(r *http.Request) string {
	if forwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
