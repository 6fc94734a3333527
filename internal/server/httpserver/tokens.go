package httpserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens issues and verifies HS256 access tokens whose subject is the session email.
type Tokens struct {
	signKey   []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokens constructs a token issuer.
func NewTokens(signKey []byte, accessTTL time.Duration) *Tokens {
	return &Tokens{signKey: signKey, accessTTL: accessTTL, now: time.Now}
}

// Issue creates a signed token for email.
func (t *Tokens) Issue(email string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signKey)
	return signed, exp, err
}

// Parse verifies raw and returns its subject.
func (t *Tokens) Parse(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token without subject")
	}
	return claims.Subject, nil
}
