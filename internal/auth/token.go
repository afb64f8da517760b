// Package auth implements the authentication boundary: signed bearer
// tokens, password hashing and subject-to-user resolution.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"outlay/internal/core"
)

// TokenManager issues and validates HMAC-signed bearer tokens. The signing
// key is fixed for the lifetime of the process and the manager holds no
// other state, so it is safe for concurrent use.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid token ttl %v", ttl)
	}
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}, nil
}

// Issue produces a signed token binding the subject to the issuing instant,
// expiring a fixed duration later. It also returns the expiry for callers
// that surface it to clients.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks signature, structure and expiry, and returns the embedded
// subject unchanged. Every failure collapses into core.ErrInvalidToken so
// callers cannot distinguish a forged token from an expired one.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", core.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", core.ErrInvalidToken
	}

	return claims.Subject, nil
}

// TTL reports the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
