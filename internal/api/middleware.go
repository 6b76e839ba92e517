package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

type contextKey string

const adminNameKey contextKey = "admin_name"

// AdminAuth guards the /admin subtree. Only tokens of type "admin" pass.
func AdminAuth(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			if claims.Type != "admin" {
				writeError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			ctx := context.WithValue(r.Context(), adminNameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminName(r *http.Request) string {
	if name, ok := r.Context().Value(adminNameKey).(string); ok {
		return name
	}
	return ""
}

// RequestLogging logs method, path and remote address for every request.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", remoteIP(r))
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}
