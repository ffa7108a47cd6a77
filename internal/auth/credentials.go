package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"duskhollow/server/internal/storage"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password
// so the response leaks nothing about which half failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier resolves a username plus client-hashed password to a
// durable record, or fails without exposing internals.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (storage.PlayerRecord, error)
}

// BcryptVerifier compares the presented password against the stored bcrypt
// digest for the account.
type BcryptVerifier struct {
	Store storage.PlayerStore
}

func (v *BcryptVerifier) Verify(ctx context.Context, username, password string) (storage.PlayerRecord, error) {
	if username == "" || password == "" {
		return storage.PlayerRecord{}, ErrInvalidCredentials
	}
	record, err := v.Store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.PlayerRecord{}, ErrInvalidCredentials
		}
		return storage.PlayerRecord{}, fmt.Errorf("lookup %q: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return storage.PlayerRecord{}, ErrInvalidCredentials
	}
	return record, nil
}

// HashPassword produces a bcrypt digest for account creation.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}
