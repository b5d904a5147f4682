// Package jwtx provides HS256-signed session tokens. Sessions are
// symmetric by design: the edge service is the only party that mints or
// verifies them, so a shared secret beats key distribution.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// SessionClaims are the claims carried by a session token. The projection
// is intentionally minimal: downstream consumers get identity, never
// secret material.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// NewSessionClaims builds claims for a freshly authenticated user.
// tokenID becomes the jti claim; it must be unique per mint so two
// logins in the same second never produce the same token.
func NewSessionClaims(tokenID, userID, email, role string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}

// Codec signs and verifies session tokens under a single HS256 secret.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec. The secret must be non-empty; loading and
// fail-fast validation of the secret is the caller's concern.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	return &Codec{secret: secret}, nil
}

// Sign produces a compact HS256 JWS for the given claims.
func (c *Codec) Sign(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a token, rejecting any signing method other
// than HS256. Expiry is validated with no leeway.
func (c *Codec) Verify(token string) (SessionClaims, error) {
	var claims SessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSig
		}
		return c.secret, nil
	})

	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return SessionClaims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return SessionClaims{}, ErrInvalidSig
	default:
		return SessionClaims{}, ErrMalformed
	}
}
