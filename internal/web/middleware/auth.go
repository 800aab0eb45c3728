package middleware

import (
	"net/http"
	"strings"

	"github.com/pipelinekit/stagegen/internal/web/auth"
)

// AuthConfig holds configuration for authentication middleware
type AuthConfig struct {
	// AuthService is used to validate tokens
	AuthService *auth.AuthService
	// SkipPaths is a list of paths to skip authentication
	SkipPaths []string
	// QueryParam, when set, is read if the Authorization header is absent.
	// Browsers cannot set headers on websocket handshakes.
	QueryParam string
}

// Auth creates an authentication middleware with the given auth service
func Auth(authService *auth.AuthService) Middleware {
	return AuthWithConfig(AuthConfig{AuthService: authService})
}

// AuthWithConfig creates an authentication middleware with custom configuration
func AuthWithConfig(config AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skipPath := range config.SkipPaths {
				if r.URL.Path == skipPath {
					next.ServeHTTP(w, r)
					return
				}
			}

			tokenString, ok := bearerToken(r, config.QueryParam)
			if !ok {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			if tokenString == "" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}

			claims, err := config.AuthService.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			componentID, scopes, err := auth.ComponentFromClaims(claims)
			if err != nil {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			r = r.WithContext(auth.SetComponent(r.Context(), componentID, scopes))
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the presented token. ok is false when no credentials were
// presented; an empty token with ok true means the header was malformed.
func bearerToken(r *http.Request, queryParam string) (token string, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if queryParam != "" {
			if v := r.URL.Query().Get(queryParam); v != "" {
				return v, true
			}
		}
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true
	}
	return parts[1], true
}
