package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matchminds/backend/internal/auth"
	"github.com/matchminds/backend/internal/models"
	"github.com/matchminds/backend/internal/session"
)

func TestAuthMiddleware(t *testing.T) {
	secret := []byte("secret")
	valid, err := auth.GenerateToken(secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := auth.GenerateToken(secret, time.Now().Add(-100*time.Hour))
	sessionToken, _ := session.NewIssuer(secret).Issue(models.Session{CheckID: "c1"})

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = AdminSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(secret)(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"session token", "Bearer " + sessionToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && gotSubject != "admin" {
				t.Errorf("subject = %q, want admin", gotSubject)
			}
		})
	}
}
