package core

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenParser decodes claims without verifying the signature. The client
// never holds the signing key; it only needs the expiry claim, and the
// server remains the authority on token validity.
var tokenParser = jwt.NewParser()

// IsTokenValid decodes the access token's claims and compares the exp
// claim against now. Any decode failure, or a token without an expiry,
// is treated as invalid (fail closed).
func IsTokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := tokenParser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.Before(exp.Time)
}

// Valid reports whether the pair's access token is still usable.
func (p TokenPair) Valid(now time.Time) bool {
	return IsTokenValid(p.AccessToken, now)
}

// Empty reports whether the pair holds no access token at all.
func (p TokenPair) Empty() bool {
	return p.AccessToken == ""
}
