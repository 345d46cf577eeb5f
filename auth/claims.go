package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields parley reads from the service's access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"userId,omitempty"`
	LegacyID    string `json:"user_id,omitempty"`
	DisplayName string `json:"name,omitempty"`
}

// User returns the user id carried by the token, preferring explicit
// user id claims over the subject.
func (c *Claims) User() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.LegacyID != "":
		return c.LegacyID
	default:
		return c.Subject
	}
}

// ParseClaims decodes the token's claims without verifying its signature.
// The signing key belongs to the service; the client only reads the token
// to learn who it is for and when it lapses.
func ParseClaims(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &c, nil
}

// UserIDFromToken returns the user id carried by token.
func UserIDFromToken(token string) (string, error) {
	c, err := ParseClaims(token)
	if err != nil {
		return "", err
	}
	id := c.User()
	if id == "" {
		return "", fmt.Errorf("parse token: no user id claim")
	}
	return id, nil
}

// Expired reports whether token carries an expiry at or before now.
// Tokens without an expiry never expire.
func Expired(token string, now time.Time) (bool, error) {
	c, err := ParseClaims(token)
	if err != nil {
		return false, err
	}
	if c.ExpiresAt == nil {
		return false, nil
	}
	return !now.Before(c.ExpiresAt.Time), nil
}
