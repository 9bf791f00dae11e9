package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque bearer token persisted between runs.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewCredential returns a credential that expires ttl from now.
func NewCredential(token string, ttl time.Duration, now time.Time) Credential {
	return Credential{Token: strings.TrimSpace(token), ExpiresAt: now.Add(ttl)}
}

// Valid reports whether the credential has a token and has not expired.
// A zero ExpiresAt means no local expiry (localStorage semantics).
func (c Credential) Valid(now time.Time) bool {
	if c.Token == "" {
		return false
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return false
	}
	return !ExpiredJWT(c.Token, now)
}

// ExpiredJWT reports whether token is a JWT whose exp claim is in the past.
// The signature is not verified; opaque tokens are never considered expired.
func ExpiredJWT(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
