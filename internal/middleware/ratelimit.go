package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ledgerlite/ledgerlite/internal/kvstore"
)

// RateLimitConfig holds configuration for the login rate limiter.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Store   kvstore.Store
	Enabled bool
	// Max requests per client IP per window.
	Max    int
	Window time.Duration
}

// RateLimitAuth returns middleware that applies a fixed-window per-IP
// limit to authentication endpoints. Counters live in the same store
// as the application data; a store failure fails open.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Max <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			ip := clientIP(r)
			key := fmt.Sprintf("ratelimit:login:%s:%d", hashIP(ip), window)

			count, err := bumpCounter(r.Context(), cfg.Store, key)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			// The previous window's counter is dead weight now.
			prevKey := fmt.Sprintf("ratelimit:login:%s:%d", hashIP(ip), window-1)
			_ = cfg.Store.Remove(r.Context(), prevKey)

			if count > cfg.Max {
				retryAfter := int((window+1)*int64(cfg.Window.Seconds()) - time.Now().Unix())
				if retryAfter < 1 {
					retryAfter = 1
				}

				cfg.Logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests","code":"RATE_LIMITED"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bumpCounter does a read-modify-write increment. Two racing requests
// may count as one; the limiter is advisory, not exact.
func bumpCounter(ctx context.Context, store kvstore.Store, key string) (int, error) {
	count := 0
	raw, err := store.Get(ctx, key)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return 0, err
	}
	if err == nil {
		if parsed, perr := strconv.Atoi(raw); perr == nil {
			count = parsed
		}
	}
	count++
	if err := store.Set(ctx, key, strconv.Itoa(count)); err != nil {
		return 0, err
	}
	return count, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// hashIP keeps raw client addresses out of the store.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
