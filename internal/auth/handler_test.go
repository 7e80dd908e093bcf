package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matchminds/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	secret := []byte("secret")
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(string(hash), secret)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"password":"hunter22"}`, http.StatusOK},
		{"wrong", `{"password":"hunter2"}`, http.StatusUnauthorized},
		{"empty", `{"password":""}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Login(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp models.AuthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.ExpiresIn != int64((72 * time.Hour).Seconds()) {
				t.Errorf("ExpiresIn = %d", resp.ExpiresIn)
			}
			sub, err := ParseToken(secret, resp.Token)
			if err != nil || sub != "admin" {
				t.Errorf("ParseToken = %q, %v", sub, err)
			}
		})
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHandler("", []byte("secret")).Login(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"x"}`)))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	tok, err := GenerateToken([]byte("a"), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken([]byte("b"), tok); err == nil {
		t.Error("expected error for wrong secret")
	}
}
