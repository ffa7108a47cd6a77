package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("player record not found")

// ErrDuplicate is returned when a create collides with an existing record.
var ErrDuplicate = errors.New("player record already exists")

// PlayerRecord is the durable shape of a player. The live table in the server
// package mirrors these fields and layers equipment bonuses on top; derived
// totals are never written back here.
type PlayerRecord struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string

	Strength float64
	Defense  float64
	Speed    float64

	Level      int
	Experience int
	Gold       int

	Health    float64
	MaxHealth float64

	X float64
	Y float64
	Z float64

	EquippedItems []string

	SessionToken string
	TokenExpiry  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerStore is the repository interface the core depends on. Implementations
// must make AddGold atomic; the rest are whole-record or single-field updates.
type PlayerStore interface {
	Get(ctx context.Context, id string) (PlayerRecord, error)
	FindByUsername(ctx context.Context, username string) (PlayerRecord, error)
	FindByToken(ctx context.Context, token string) (PlayerRecord, error)
	Create(ctx context.Context, record PlayerRecord) error
	Update(ctx context.Context, record PlayerRecord) error

	// AddGold adjusts the gold counter atomically and returns the new total.
	AddGold(ctx context.Context, id string, amount int) (int, error)
	SetHealth(ctx context.Context, id string, health float64) error
	SetPosition(ctx context.Context, id string, x, y, z float64) error
	SetSessionToken(ctx context.Context, id, token string, expiry time.Time) error
	ClearSessionToken(ctx context.Context, id string) error
}
