package utils // package utils provides helper functions for token creation

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// NewSupervisorToken builds and signs an HS256 JWT granting access to
// the supervisor live-view endpoint.  It takes the signing secret,
// the subject (typically a staff user name or id), the role to embed
// (SUPERVISOR or ADMIN) and the token lifetime.  The JWT carries the
// standard claims: subject (sub), role, expiration (exp) and issued
// at (iat).
func NewSupervisorToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
