package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorSweepInterval = 5 * time.Minute
	visitorMaxIdle       = 10 * time.Minute
)

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64
	// Burst caps how many requests a client may issue at once.
	Burst int
}

// visitor is one client's bucket plus the last time it was used, so idle
// entries can be swept.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client token-bucket limit in front of the API.
// Every tenant's traffic shares the caller's bucket; an over-limit request
// gets 429 with a Retry-After hint and never reaches the tenant resolver.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	var visitors sync.Map // client IP → *visitor

	go sweepIdleVisitors(&visitors)

	limiterFor := func(ip string) *rate.Limiter {
		if v, ok := visitors.Load(ip); ok {
			entry := v.(*visitor)
			entry.lastSeen = time.Now()
			return entry.limiter
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
		visitors.Store(ip, &visitor{limiter: limiter, lastSeen: time.Now()})
		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := limiterFor(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}
			if delay := reservation.Delay(); delay > 0 {
				// Would have to wait for tokens; reject instead of queueing.
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// sweepIdleVisitors periodically drops buckets that have gone quiet, keeping
// the visitor map bounded by active clients rather than all clients ever seen.
func sweepIdleVisitors(visitors *sync.Map) {
	for {
		time.Sleep(visitorSweepInterval)
		visitors.Range(func(key, value any) bool {
			if time.Since(value.(*visitor).lastSeen) > visitorMaxIdle {
				visitors.Delete(key)
			}
			return true
		})
	}
}

// clientIP is the bucket key: the peer address with the port stripped.
// X-Forwarded-For is untrusted and deliberately ignored; honoring it would
// let a client rotate headers to dodge its bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    429,
		"message": "rate limit exceeded",
	})
}
