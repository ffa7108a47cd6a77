package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid covers malformed, mis-signed, and expired tokens.
var ErrTokenInvalid = errors.New("session token invalid or expired")

// DefaultTokenTTL keeps reconnection tokens short-lived. A fresh token is
// minted on every successful login.
const DefaultTokenTTL = 10 * time.Minute

// TokenIssuer mints and validates signed session tokens. The token is also
// stored on the durable record so a login can revoke earlier sessions.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token bound to the player id and its expiry time.
func (t *TokenIssuer) Issue(playerID string) (string, time.Time, error) {
	now := t.now()
	expiry := now.Add(t.ttl)
	// The unique ID makes every issued token distinct even within the same
	// second, so a relogin always supersedes the previous token.
	claims := jwt.RegisteredClaims{
		Subject:   playerID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiry, nil
}

// Validate checks signature and expiry and returns the bound player id.
func (t *TokenIssuer) Validate(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
