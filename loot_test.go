package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"duskhollow/server/internal/net/proto"
)

func placeLoot(h *Hub, id string, x, z float64, gold int, ttl time.Duration) *lootDropState {
	drop := &lootDropState{
		LootDrop: LootDrop{
			ID:       id,
			ItemType: string(ItemTypeRustedShortsword),
			ItemName: "Rusted Shortsword",
			Rarity:   RarityCommon,
			Gold:     gold,
			X:        x,
			Z:        z,
		},
		expiresAt: time.Now().Add(ttl),
	}
	h.world.mu.Lock()
	h.world.loot[id] = drop
	h.world.mu.Unlock()
	return drop
}

func pickupEnvelope(t *testing.T, lootID string) []byte {
	t.Helper()
	return encodeEnvelope(t, proto.TypeLootPickupRequest, proto.LootPickupPayload{LootID: lootID})
}

func decodePickupResponse(t *testing.T, transport *fakeTransport) lootPickupResponse {
	t.Helper()
	data, ok := transport.lastOfType(proto.TypeLootPickupResponse)
	if !ok {
		t.Fatalf("no pickup response")
	}
	var resp lootPickupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to decode pickup response: %v", err)
	}
	return resp
}

func TestLootPickupSuccess(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")
	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	state.position = vec3(0, 0, 0)
	goldBefore := state.gold
	state.mu.Unlock()

	placeLoot(h, "loot-1", 2, 0, 15, time.Minute)
	h.OnMessage(c, pickupEnvelope(t, "loot-1"))

	resp := decodePickupResponse(t, transport)
	if !resp.Success || resp.Gold != 15 {
		t.Fatalf("pickup response %+v, want success with 15 gold", resp)
	}
	state.mu.Lock()
	goldAfter := state.gold
	state.mu.Unlock()
	if goldAfter != goldBefore+15 {
		t.Fatalf("gold %d, want %d", goldAfter, goldBefore+15)
	}
	h.world.mu.Lock()
	_, stillThere := h.world.loot["loot-1"]
	h.world.mu.Unlock()
	if stillThere {
		t.Fatalf("drop still in world after pickup")
	}
}

func TestLootPickupOutOfRange(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")
	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	state.position = vec3(0, 0, 0)
	state.mu.Unlock()

	placeLoot(h, "loot-1", lootPickupRange+2, 0, 15, time.Minute)
	h.OnMessage(c, pickupEnvelope(t, "loot-1"))

	resp := decodePickupResponse(t, transport)
	if resp.Success {
		t.Fatalf("out-of-range pickup succeeded")
	}
	h.world.mu.Lock()
	_, stillThere := h.world.loot["loot-1"]
	h.world.mu.Unlock()
	if !stillThere {
		t.Fatalf("out-of-range pickup consumed the drop")
	}
}

func TestLootPickupExpiredBeforeSweep(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")
	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	state.position = vec3(0, 0, 0)
	goldBefore := state.gold
	state.mu.Unlock()

	// Past its TTL but the sweep has not run yet.
	placeLoot(h, "loot-1", 1, 0, 10, -time.Minute)
	h.OnMessage(c, pickupEnvelope(t, "loot-1"))

	resp := decodePickupResponse(t, transport)
	if resp.Success || resp.Gold != 0 {
		t.Fatalf("pickup of an expired drop returned %+v", resp)
	}
	state.mu.Lock()
	goldAfter := state.gold
	state.mu.Unlock()
	if goldAfter != goldBefore {
		t.Fatalf("expired pickup changed gold %d -> %d", goldBefore, goldAfter)
	}

	// The failed pickup evicts the drop and announces the expiry.
	h.world.mu.Lock()
	_, stillThere := h.world.loot["loot-1"]
	h.world.mu.Unlock()
	if stillThere {
		t.Fatalf("expired drop left in world after pickup attempt")
	}
	if transport.countOfType(proto.TypeLootExpire) != 1 {
		t.Fatalf("no LootExpire broadcast for the evicted drop")
	}
	if expired := h.expireLoot(time.Now()); len(expired) != 0 {
		t.Fatalf("sweep expired %v a second time", expired)
	}
}

func TestLootPickupMissing(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")

	h.OnMessage(c, pickupEnvelope(t, "loot-gone"))

	resp := decodePickupResponse(t, transport)
	if resp.Success {
		t.Fatalf("pickup of missing drop succeeded")
	}
}

func TestConcurrentPickupExactlyOneSuccess(t *testing.T) {
	h := newTestHub(t)
	conns := make([]*Conn, 4)
	transports := make([]*fakeTransport, 4)
	ids := []string{"p1", "p2", "p3", "p4"}
	for i, id := range ids {
		conns[i], transports[i] = joinPlayer(t, h, id, id)
		state := mustPlayer(t, h, id)
		state.mu.Lock()
		state.position = vec3(0, 0, 0)
		state.mu.Unlock()
	}

	placeLoot(h, "loot-1", 1, 0, 20, time.Minute)

	payload := encodePayload(t, proto.LootPickupPayload{LootID: "loot-1"})
	var wg sync.WaitGroup
	for i := range conns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.handleLootPickup(conns[i], payload)
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := range transports {
		resp := decodePickupResponse(t, transports[i])
		if resp.Success {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("%d pickups succeeded, want exactly 1", successes)
	}
}

func TestExpireLoot(t *testing.T) {
	h := newTestHub(t)
	placeLoot(h, "stale", 0, 0, 5, -time.Second)
	placeLoot(h, "fresh", 5, 0, 5, time.Minute)

	expired := h.expireLoot(time.Now())
	if len(expired) != 1 || expired[0] != "stale" {
		t.Fatalf("expired %v, want [stale]", expired)
	}
	h.world.mu.Lock()
	_, freshThere := h.world.loot["fresh"]
	_, staleThere := h.world.loot["stale"]
	h.world.mu.Unlock()
	if !freshThere || staleThere {
		t.Fatalf("sweep kept stale=%v fresh=%v", staleThere, freshThere)
	}
}

func TestEliteKillAlwaysDrops(t *testing.T) {
	h := newTestHub(t)
	enemy := placeEnemy(h, "e1", 0, 0, 0, 100, 3, true)

	h.world.mu.Lock()
	before := len(h.world.loot)
	h.world.mu.Unlock()

	h.rollLoot(enemy)

	h.world.mu.Lock()
	after := len(h.world.loot)
	h.world.mu.Unlock()
	if after != before+1 {
		t.Fatalf("elite kill produced %d drops, want 1", after-before)
	}
}

func TestGoldRollWithinBounds(t *testing.T) {
	h := newTestHub(t)
	enemy := placeEnemy(h, "e1", 0, 0, 0, 100, 3, true)
	for i := 0; i < 50; i++ {
		h.rollLoot(enemy)
	}

	h.world.mu.Lock()
	defer h.world.mu.Unlock()
	for _, drop := range h.world.loot {
		if drop.Gold < lootGoldMin || drop.Gold > lootGoldMax {
			t.Fatalf("gold roll %d outside [%d, %d]", drop.Gold, lootGoldMin, lootGoldMax)
		}
	}
}
