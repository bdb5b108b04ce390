package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/security"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AuthMiddleware rejects requests without a valid bearer token and puts the
// admin claims on the request context.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorMessage(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondErrorMessage(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				respondError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFrom(r *http.Request) (*security.AdminClaims, bool) {
	claims, ok := r.Context().Value(adminClaimsKey).(*security.AdminClaims)
	return claims, ok
}

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
