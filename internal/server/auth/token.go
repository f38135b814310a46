// Package auth issues and parses the signed session tokens used as
// session_id on the wire. The signature only lets the server reject forged
// ids cheaply; the session row in the database stays authoritative, so
// logout and expiry revoke a token immediately.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mpetrovs/spendvault/internal/common"
)

type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

func GenerateSessionToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})

	return token.SignedString(secretKey)
}

func SessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrUnauthorized
	}

	if !token.Valid || claims.SessionID == "" {
		return "", common.ErrUnauthorized
	}

	return claims.SessionID, nil
}
