package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// StaffIDKey carries the authenticated staff member's id through the request
// context.
const StaffIDKey contextKey = "staffID"

// AuthMiddleware guards staff-only routes. Requests must carry a bearer token
// from Login; the staff id it names is stashed in the context for handlers
// downstream.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or malformed authorization header"})
			return
		}

		staffID, err := s.ValidateToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), StaffIDKey, staffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

// StaffIDFromContext returns the staff id AuthMiddleware stored, or "" on an
// unauthenticated request.
func StaffIDFromContext(ctx context.Context) string {
	staffID, _ := ctx.Value(StaffIDKey).(string)
	return staffID
}
