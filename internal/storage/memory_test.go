package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record := PlayerRecord{ID: "p1", Name: "Rella", Username: "rella", Gold: 10}
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Rella" || got.Gold != 10 {
		t.Fatalf("got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not stamped on create")
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, PlayerRecord{ID: "p1", Username: "rella"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Create(ctx, PlayerRecord{ID: "p1"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate id error %v, want ErrDuplicate", err)
	}
	if err := store.Create(ctx, PlayerRecord{ID: "p2", Username: "rella"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate username error %v, want ErrDuplicate", err)
	}
}

func TestGetReturnsClone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, PlayerRecord{ID: "p1", EquippedItems: []string{"sword"}})

	got, _ := store.Get(ctx, "p1")
	got.EquippedItems[0] = "mutated"
	got.Gold = 999

	fresh, _ := store.Get(ctx, "p1")
	if fresh.EquippedItems[0] != "sword" || fresh.Gold != 0 {
		t.Fatalf("caller mutation leaked into store: %+v", fresh)
	}
}

func TestFindByUsername(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, PlayerRecord{ID: "p1", Username: "rella"})

	got, err := store.FindByUsername(ctx, "rella")
	if err != nil || got.ID != "p1" {
		t.Fatalf("FindByUsername = %+v, %v", got, err)
	}
	if _, err := store.FindByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing username error %v, want ErrNotFound", err)
	}
}

func TestAddGoldConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, PlayerRecord{ID: "p1"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AddGold(ctx, "p1", 3); err != nil {
				t.Errorf("AddGold failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "p1")
	if got.Gold != 150 {
		t.Fatalf("gold %d after 50 concurrent +3, want 150", got.Gold)
	}
}

func TestAddGoldClampsAtZero(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, PlayerRecord{ID: "p1", Gold: 10})

	total, err := store.AddGold(ctx, "p1", -50)
	if err != nil {
		t.Fatalf("AddGold failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("gold %d after overdraft, want 0", total)
	}
}

func TestSessionTokenLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Create(ctx, PlayerRecord{ID: "p1"})

	expiry := time.Now().Add(time.Minute)
	if err := store.SetSessionToken(ctx, "p1", "tok", expiry); err != nil {
		t.Fatalf("SetSessionToken failed: %v", err)
	}
	got, err := store.FindByToken(ctx, "tok")
	if err != nil || got.ID != "p1" {
		t.Fatalf("FindByToken = %+v, %v", got, err)
	}

	if err := store.ClearSessionToken(ctx, "p1"); err != nil {
		t.Fatalf("ClearSessionToken failed: %v", err)
	}
	if _, err := store.FindByToken(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cleared token still resolves: %v", err)
	}
	if _, err := store.FindByToken(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token resolved a record")
	}
}

func TestUpdateMissing(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Update(context.Background(), PlayerRecord{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of missing record: %v", err)
	}
}
