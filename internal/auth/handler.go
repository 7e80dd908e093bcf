package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/matchminds/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject  = "admin"
	adminAudience = "admin"
	tokenTTL      = 72 * time.Hour
)

var ErrInvalidToken = errors.New("invalid admin token")

type Handler struct {
	passwordHash []byte
	secret       []byte
	validate     *validator.Validate
}

// NewHandler serves admin login. An empty passwordHash disables login.
func NewHandler(passwordHash string, secret []byte) *Handler {
	return &Handler{
		passwordHash: []byte(passwordHash),
		secret:       secret,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if len(h.passwordHash) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Admin login is not configured"})
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password is required"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		log.Printf("[auth] failed admin login from %s", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid password"})
		return
	}

	token, err := GenerateToken(h.secret, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, ExpiresIn: int64(tokenTTL.Seconds())})
}

func GenerateToken(secret []byte, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Audience:  jwt.ClaimStrings{adminAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies an admin token and returns its subject. Session
// tokens signed with the same secret are rejected by audience.
func ParseToken(secret []byte, tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(adminAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
