package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RateLimit limits requests per user. The key is the userID route parameter,
// or the client address on routes without one. A failing limiter lets the
// request through.
func RateLimit(limiter outbound.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	logger = logger.Named("ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("Rate limit check failed", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

			if !decision.Allowed {
				logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.String("path", r.URL.Path),
					zap.String("user_agent", r.UserAgent()),
				)
				retryAfter := int(math.Ceil(time.Until(decision.Reset).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"error":{"code":"TOO_MANY_REQUESTS","message":"Too many requests. Please try again later."}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	if userID := chi.URLParam(r, "userID"); userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
