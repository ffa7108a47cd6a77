package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It backs tests and dev runs;
// production swaps in a durable implementation behind the same interface.
type MemoryStore struct {
	mu         sync.Mutex
	records    map[string]*PlayerRecord
	byUsername map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]*PlayerRecord),
		byUsername: make(map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return PlayerRecord{}, ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (PlayerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[username]
	if !ok {
		return PlayerRecord{}, ErrNotFound
	}
	return cloneRecord(s.records[id]), nil
}

func (s *MemoryStore) FindByToken(_ context.Context, token string) (PlayerRecord, error) {
	if token == "" {
		return PlayerRecord{}, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.SessionToken == token {
			return cloneRecord(record), nil
		}
	}
	return PlayerRecord{}, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, record PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return ErrDuplicate
	}
	if record.Username != "" {
		if _, exists := s.byUsername[record.Username]; exists {
			return ErrDuplicate
		}
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	stored := cloneRecord(&record)
	s.records[record.ID] = &stored
	if record.Username != "" {
		s.byUsername[record.Username] = record.ID
	}
	return nil
}

func (s *MemoryStore) Update(_ context.Context, record PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[record.ID]
	if !ok {
		return ErrNotFound
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = time.Now()
	stored := cloneRecord(&record)
	s.records[record.ID] = &stored
	if record.Username != "" {
		s.byUsername[record.Username] = record.ID
	}
	return nil
}

func (s *MemoryStore) AddGold(_ context.Context, id string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return 0, ErrNotFound
	}
	record.Gold += amount
	if record.Gold < 0 {
		record.Gold = 0
	}
	record.UpdatedAt = time.Now()
	return record.Gold, nil
}

func (s *MemoryStore) SetHealth(_ context.Context, id string, health float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	record.Health = health
	record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetPosition(_ context.Context, id string, x, y, z float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	record.X, record.Y, record.Z = x, y, z
	record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetSessionToken(_ context.Context, id, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	record.SessionToken = token
	record.TokenExpiry = expiry
	record.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ClearSessionToken(ctx context.Context, id string) error {
	return s.SetSessionToken(ctx, id, "", time.Time{})
}

func cloneRecord(record *PlayerRecord) PlayerRecord {
	cloned := *record
	if len(record.EquippedItems) > 0 {
		cloned.EquippedItems = append([]string(nil), record.EquippedItems...)
	}
	return cloned
}
