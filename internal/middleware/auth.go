package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/matchminds/backend/internal/auth"
	"github.com/matchminds/backend/internal/models"
)

type contextKey string

const adminKey contextKey = "admin_subject"

// AuthMiddleware requires a valid admin bearer token and stores its subject
// in the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "Authorization header required")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, "Invalid authorization format")
				return
			}

			subject, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				log.Printf("[middleware] %v", err)
				writeError(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSubject returns the subject stored by AuthMiddleware.
func AdminSubject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(adminKey).(string)
	return s, ok
}

func writeError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
