// Session token minting and validation.

package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maruel/ksid"
)

// tokenExpiration bounds a session token's lifetime. Tokens also die
// with the process since the signing secret is per-process.
const tokenExpiration = 24 * time.Hour

var (
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid claims")
)

// MintSessionToken generates a JWT carrying the session ID as "sid".
func MintSessionToken(secret []byte, id ksid.ID) (string, error) {
	claims := jwt.MapClaims{
		"sid": id.String(),
		"exp": time.Now().Add(tokenExpiration).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken validates a token and returns the session ID it
// carries.
func ParseSessionToken(secret []byte, tokenString string) (ksid.ID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidClaims
	}
	sidStr, ok := claims["sid"].(string)
	if !ok {
		return 0, errInvalidClaims
	}
	id, err := ksid.Parse(sidStr)
	if err != nil {
		return 0, errInvalidClaims
	}
	return id, nil
}
