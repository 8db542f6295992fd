package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

const bearerPrefix = "Bearer "

type claimsKey struct{}

// ServerMetrics records HTTP traffic of the mock / Enregistre le trafic HTTP du mock
type ServerMetrics interface {
	RecordHTTPRequest(method, path string, statusCode int)
	RecordHTTPDuration(method, path string, duration time.Duration)
	IncrementActiveConnections()
	DecrementActiveConnections()
	RecordRateLimitHit(endpoint string)
}

// ClaimsFrom returns the verified token claims, nil when auth is off.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// leaksToken spots credentials passed in the query string instead of the header
func leaksToken(rawQuery string) bool {
	q := strings.ToLower(rawQuery)
	return strings.Contains(q, "access_token=") ||
		strings.Contains(q, "bearer+") ||
		strings.Contains(q, "bearer%20")
}

// trace echoes the chi request id, refuses tokens in URLs and writes one access line per request.
// trace journalise chaque requête
func trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		w.Header().Set(RequestIDHeader, reqID)

		if leaksToken(r.URL.RawQuery) {
			slog.Error("mockapi: token in query string", "request_id", reqID, "path", r.URL.Path)
			ErrorResponse(w, "forbidden", http.StatusForbidden)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "mockapi: request",
			"request_id", reqID,
			"method", r.Method,
			"route", routePattern(r),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// routePattern labels metrics with the chi pattern so uuids don't explode cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// instrument feeds ServerMetrics; a no-op when none is configured.
func (s *Server) instrument(next http.Handler) http.Handler {
	m := s.opts.Metrics
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.IncrementActiveConnections()
		defer m.DecrementActiveConnections()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// The pattern is only complete once routing has happened
		route := routePattern(r)
		m.RecordHTTPRequest(r.Method, route, ww.Status())
		m.RecordHTTPDuration(r.Method, route, time.Since(start))
	})
}

// requireAuth checks the Bearer JWT and stores its claims / Vérifie le JWT Bearer
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if !s.opts.RequireAuth {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
		if !ok || token == "" {
			ErrorResponse(w, "authentification requise", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(token, s.opts.JWTSecret)
		if err != nil {
			slog.Warn("mockapi: invalid token", "request_id", middleware.GetReqID(r.Context()), "err", err)
			ErrorResponse(w, "jeton invalide", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}
