package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/infrastructure/http/response"
	"github.com/userdesk/userdesk/infrastructure/service/logger"
)

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
	}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := GetClientIP(r)

		if m.rateLimitService == nil {
			next.ServeHTTP(w, r)
			return
		}

		var key string
		var limit int
		var window time.Duration

		switch {
		case strings.Contains(r.URL.Path, "/login"):
			key = fmt.Sprintf("login:ip:%s", clientIP)
			limit = 10
			window = 15 * time.Minute
		case strings.Contains(r.URL.Path, "/refresh"):
			key = fmt.Sprintf("refresh:ip:%s", clientIP)
			limit = 30
			window = 1 * time.Hour
		default:
			key = fmt.Sprintf("general:ip:%s", clientIP)
			limit = 100
			window = 1 * time.Minute
		}

		blocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
			// Fail open on limiter errors.
		}
		if blocked {
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			w.Header().Set("Retry-After", "900")
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, limit, window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip":  clientIP,
				"key": key,
			})
			// Fail open on limiter errors.
			allowed = true
		}
		if !allowed {
			blockDuration := 15 * time.Minute
			if strings.Contains(r.URL.Path, "/login") {
				blockDuration = 30 * time.Minute
			}
			if err := m.rateLimitService.Block(ctx, key, blockDuration, "rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{
					"ip":  clientIP,
					"key": key,
				})
			}
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(blockDuration.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP, preferring proxy headers.
func GetClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
