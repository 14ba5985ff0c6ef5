package utils

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim from a JWT without verifying the signature.
// The PDS is the authority on its own tokens; we only need to know when to
// ask for a new session.
func TokenExpiry(tokenString string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		slog.Info(err.Error())
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}

	return claims.ExpiresAt.Time, nil
}
