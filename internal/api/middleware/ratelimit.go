package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/phrazzld/deckmind/internal/api/shared"
	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/metrics"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user bucket is kept.
const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user. It must run
// after AuthMiddleware.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	users     map[string]*userLimiter
	lastSweep time.Time
}

// NewRateLimiter creates a RateLimiter from the configured rate and burst.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limit: rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst: cfg.Burst,
		now:   time.Now,
		users: make(map[string]*userLimiter),
	}
}

// Allow reports whether userID may make another request now.
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterIdleTTL {
		for id, u := range rl.users {
			if now.Sub(u.lastSeen) > limiterIdleTTL {
				delete(rl.users, id)
			}
		}
		rl.lastSweep = now
	}

	u, ok := rl.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// Limit rejects requests over the caller's budget with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserIDFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
			return
		}

		if !rl.Allow(userID) {
			metrics.RateLimited.Inc()
			logger.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("user_id", userID),
				slog.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "60")
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}
