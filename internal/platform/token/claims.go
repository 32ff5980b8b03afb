// Package token reads identity claims from caller bearer tokens.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"
)

var ErrMalformed = errors.New("malformed bearer token")

// Claims are the identity fields the checkout flow cares about.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// DecodeUnverified parses a JWT without checking its signature or expiry.
// Authentication happens upstream at the gateway; the result must only be
// used for display and contact data, never for authorization.
func DecodeUnverified(raw string) (*Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return nil, ErrMalformed
	}
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// FromAuthorizationHeader extracts the token from "Bearer <token>".
func FromAuthorizationHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
