// Package admin gates privileged runcmd verbs (supervisor.stop,
// worker.<n>.drain) behind a signed bearer token, per spec §6's Admin
// token surface.
//
// Grounded on the teacher's JWT auth middleware
// (pkg/web/middleware/auth/jwt.go), generalized from an HTTP-header
// bearer-token check to a plain string token validated before a runcmd
// is ever handed to the router, since the core has no HTTP concept of
// its own.
package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrMissingToken is returned when a privileged verb is invoked with an
// empty bearer token.
var ErrMissingToken = errors.New("admin: bearer token required")

// claims is the JWT payload an admin token carries: just a subject and
// the standard registered claims (exp, iat) jwt.RegisteredClaims gives
// for free.
type claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs a new bearer token for subject, valid for ttl,
// using signingKey as the HS256 secret.
func IssueToken(signingKey, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(signingKey))
}

// ValidateToken parses and verifies tokenString against signingKey,
// rejecting anything not signed with HS256 to avoid alg-confusion
// attacks, and returns the subject on success.
func ValidateToken(signingKey, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method)
		}
		return []byte(signingKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("admin: invalid token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("admin: invalid token claims")
	}
	return c.Subject, nil
}

// HashSecret bcrypt-hashes an admin secret for storage in config, so
// the raw secret is never kept at rest.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("admin: hash secret: %w", err)
	}
	return string(hashed), nil
}

// CompareSecret reports whether secret matches the bcrypt hash
// produced by HashSecret, e.g. when an admin authenticates to obtain a
// bearer token via IssueToken.
func CompareSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return fmt.Errorf("admin: secret mismatch: %w", err)
	}
	return nil
}
