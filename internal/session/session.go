package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/matchminds/backend/internal/models"
)

const (
	issuer   = "matchminds"
	audience = "suggestions"
	ttl      = 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session")

type claims struct {
	models.Session
	jwt.RegisteredClaims
}

// Issuer signs and verifies the token that carries a finished check to the
// suggestion step.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret, now: time.Now}
}

func (i *Issuer) Issue(s models.Session) (string, error) {
	now := i.now()
	c := claims{
		Session: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   s.CheckID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Parse(token string) (*models.Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	s := c.Session
	return &s, nil
}
