package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken           = errors.New("no token supplied")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidSignature  = errors.New("invalid token signature")
	ErrInvalidSigningAlg = errors.New("unexpected token signing algorithm")
	ErrCorruptedToken    = errors.New("corrupted token")
)

// claims carries the player name; fields must be exported for JSON.
type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the HS256 session tokens that identify
// players across connections.
type Manager struct {
	secretKey []byte
	maxAge    time.Duration
}

func NewManager(secretKey string, maxAge time.Duration) *Manager {
	return &Manager{
		secretKey: []byte(secretKey),
		maxAge:    maxAge,
	}
}

func (m *Manager) Generate(name string, now time.Time) (string, error) {
	c := claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify returns the player name a token was issued for.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningAlg
		}
		return m.secretKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSigningAlg):
			return "", ErrInvalidSigningAlg
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrCorruptedToken
		default:
			return "", fmt.Errorf("verifying token: %w", err)
		}
	}

	if c, ok := token.Claims.(*claims); ok && token.Valid {
		return c.Name, nil
	}
	return "", ErrCorruptedToken
}

// FromRequest resolves the player name from the "token" cookie or, failing
// that, an Authorization bearer token.
func (m *Manager) FromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return m.Verify(cookie.Value)
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok && after != "" {
		return m.Verify(after)
	}
	return "", ErrNoToken
}
