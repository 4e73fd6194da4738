// Package auth issues the signed cookie that ties a browser to its
// in-memory planning session.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenTTL is how long a session token stays valid.
const TokenTTL = 24 * time.Hour

// Tokens signs and verifies session tokens with an HS256 secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a Tokens for secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token carrying sessionID.
func (t *Tokens) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty sessionID passed to Issue")
	}

	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": t.now().Unix(),
		"exp": t.now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates tokenString and returns its session ID.
func (t *Tokens) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
