// Package auth resolves the caller identity for authenticated operations.
// Identity is an explicit string carried through the request context, never
// read from ambient state by the service layer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated indicates a missing or unusable caller identity on an
// operation that requires one.
var ErrUnauthenticated = errors.New("unauthenticated")

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity returns the caller identity from ctx, or "" when absent.
func Identity(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// Tokens issues and verifies the HS256 bearer tokens that carry identities.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a Tokens helper for the given signing secret and token
// lifetime.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token whose subject is the identity string.
func (t *Tokens) Issue(identity string) (string, error) {
	if identity == "" {
		return "", ErrUnauthenticated
	}

	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the identity it carries.
func (t *Tokens) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrUnauthenticated
	}
	return subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
