// Package claims decodes AMS access tokens for display. Signatures are not
// verified; the result must never be used to make authentication decisions.
package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/suresoft/ams-client/internal/models"
)

var ErrEmptyToken = errors.New("empty token")

// Claims are the fields the backend puts into an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string          `json:"email,omitempty"`
	Role  models.UserRole `json:"role,omitempty"`
}

// Inspect decodes token without checking its signature.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	c := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}
	return c, nil
}

// ExpiresIn returns the time left until expiry relative to now, and false when
// the token carries no expiry.
func (c *Claims) ExpiresIn(now time.Time) (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}

// Expired reports whether the token's expiry is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	left, ok := c.ExpiresIn(now)
	return ok && left <= 0
}
