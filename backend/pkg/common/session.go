package common

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewSessionToken mints a signed session token acting as the given
// ledger party.
func NewSessionToken(secret []byte, party, role string, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Party: party,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "loyalty-backend",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}
