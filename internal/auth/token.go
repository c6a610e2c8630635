package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token inválido")

// Claims is the JWT payload issued by the login provider. The provider itself
// lives outside this service; we only verify and decode.
type Claims struct {
	Role   string `json:"rol"`
	TeamID string `json:"equipo_id,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 bearer token and returns the caller.
func ParseToken(secret []byte, token string) (User, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidToken
	}
	return User{
		ID:     claims.Subject,
		Role:   Role(claims.Role),
		TeamID: claims.TeamID,
	}, nil
}

// NewToken signs a token for the given user. Used by tests and local tooling;
// production tokens come from the external auth provider.
func NewToken(secret []byte, u User, ttl time.Duration) (string, error) {
	claims := Claims{
		Role:   string(u.Role),
		TeamID: u.TeamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
