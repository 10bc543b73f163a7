package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a bearer token without verifying its
// signature; the issuing API owns the key. A token without exp returns nil.
// Opaque (non-JWT) tokens are reported as an error.
func TokenExpiry(token string) (*time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return nil, nil
	}
	t := exp.Time
	return &t, nil
}
