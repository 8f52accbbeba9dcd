package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers any token that fails verification: bad
// signature, expired, malformed.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the payload embedded in a session token. UserID and Email
// identify the signed-in account.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
}

// IssueToken signs a session token for the given account, valid for ttl.
func IssueToken(secret []byte, userID uint, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
	})
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry of a session token and
// returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
