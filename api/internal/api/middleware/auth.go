package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/careerdesk/careerdesk/api/internal/core/domain"
)

// AccessCookieName must match the cookie set by the auth handler.
const AccessCookieName = "careerdesk_access_token"

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

type AuthMiddleware struct {
	AuthService domain.AuthService
	Logger      *slog.Logger

	limit    rate.Limit
	burst    int
	visitors sync.Map // 🛡️ Thread-safe Map for high-concurrency scaling
	stop     chan struct{}
	once     sync.Once
}

func NewAuthMiddleware(authService domain.AuthService, logger *slog.Logger, rps float64, burst int) *AuthMiddleware {
	m := &AuthMiddleware{
		AuthService: authService,
		Logger:      logger,
		limit:       rate.Limit(rps),
		burst:       burst,
		stop:        make(chan struct{}),
	}
	// Start cleanup worker as a managed method, not a global init
	go m.cleanupVisitors(time.Minute, 3*time.Minute)
	return m
}

// Close stops the visitor cleanup worker.
func (m *AuthMiddleware) Close() {
	m.once.Do(func() { close(m.stop) })
}

// ==============================================================================
// 1. Identity & Zero-Trust Access
// ==============================================================================

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.AuthService.ValidateAccessToken(r.Context(), tokenString)
		if err != nil {
			m.Logger.Warn("Rejected admin token", slog.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), domain.AdminContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ==============================================================================
// 2. Performance & DoS Protection
// ==============================================================================

// RateLimit applies a per-IP token bucket.
func (m *AuthMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// RealIP has already rewritten RemoteAddr from X-Real-IP / X-Forwarded-For
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		v, _ := m.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(m.limit, m.burst)})
		vis := v.(*visitor)
		vis.lastSeen.Store(time.Now().UnixNano())

		if !vis.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) cleanupVisitors(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-idle).UnixNano()
			m.visitors.Range(func(key, value any) bool {
				if value.(*visitor).lastSeen.Load() < cutoff {
					m.visitors.Delete(key)
				}
				return true
			})
		}
	}
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(AccessCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
