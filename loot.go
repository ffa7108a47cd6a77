package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"duskhollow/server/internal/net/proto"
	"duskhollow/server/logging"
	loggingEconomy "duskhollow/server/logging/economy"
)

// LootDrop is the wire-visible shape of an uncollected drop.
type LootDrop struct {
	ID       string `json:"id"`
	ItemType string `json:"itemType"`
	ItemName string `json:"itemName"`
	Rarity   Rarity `json:"rarity"`
	Gold     int    `json:"gold"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	ExpiresAt int64 `json:"expiresAt"`
}

// lootDropState pairs the wire shape with its expiry deadline. Membership in
// world.loot is the single source of truth for availability: a drop that has
// been deleted from the table cannot be picked up or expire twice.
type lootDropState struct {
	LootDrop
	expiresAt time.Time
}

// rollLoot runs the drop roll for a killed enemy and publishes the result.
// Elite kills always drop.
func (h *Hub) rollLoot(enemy *enemyState) {
	enemy.mu.Lock()
	position := enemy.position
	elite := enemy.elite
	enemy.mu.Unlock()

	if !elite && h.world.randFloat() > lootDropChance {
		return
	}

	h.world.rngMu.Lock()
	def := weightedPick(h.world.rng, h.weights)
	h.world.rngMu.Unlock()
	gold := lootGoldMin + h.world.randIntn(lootGoldMax-lootGoldMin+1)

	now := time.Now()
	drop := &lootDropState{
		LootDrop: LootDrop{
			ID:        "loot-" + uuid.NewString(),
			ItemType:  string(def.ID),
			ItemName:  def.Name,
			Rarity:    def.Rarity,
			Gold:      gold,
			X:         position.X(),
			Y:         position.Y(),
			Z:         position.Z(),
			ExpiresAt: now.Add(lootTTL).UnixMilli(),
		},
		expiresAt: now.Add(lootTTL),
	}

	h.world.mu.Lock()
	h.world.loot[drop.ID] = drop
	h.world.mu.Unlock()

	h.BroadcastAll(proto.TypeLootDrop, lootDropMessage{Loot: drop.LootDrop})
	loggingEconomy.LootDropped(context.Background(), h.publisher, h.Tick(),
		logging.LootRef(drop.ID), loggingEconomy.LootDroppedPayload{
			ItemID: drop.ItemType,
			Rarity: string(drop.Rarity),
		})
}

// handleLootPickup resolves one pickup request. The drop is removed from the
// table under the world lock before any reward is applied, so two players
// racing for the same drop see exactly one success.
func (h *Hub) handleLootPickup(c *Conn, data json.RawMessage) {
	var msg proto.LootPickupPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Printf("discarding malformed loot pickup from %s: %v", c.ID, err)
		return
	}

	playerID := c.PlayerID()
	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	player, ok := h.world.Player(playerID)
	if !ok {
		h.logger.Printf("loot pickup ignored for unknown player %s", playerID)
		return
	}

	player.mu.Lock()
	playerPos := player.position
	dead := player.health <= 0
	player.mu.Unlock()
	if dead {
		h.send(c, proto.TypeLootPickupResponse, lootPickupResponse{
			Success: false, LootID: msg.LootID, Message: "you are dead",
		})
		return
	}
	h.noteClaimDrift(playerID, playerPos, msg.X, msg.Y, msg.Z)

	now := time.Now()
	var failure string
	expired := false
	h.world.mu.Lock()
	drop, exists := h.world.loot[msg.LootID]
	switch {
	case !exists:
		failure = "loot is gone"
	case now.After(drop.expiresAt):
		// Past its TTL the drop is gone even before the sweep runs; evict
		// it here so a later sweep cannot expire it a second time.
		delete(h.world.loot, msg.LootID)
		failure = "loot is no longer available"
		expired = true
	case playerPos.Sub(vec3(drop.X, drop.Y, drop.Z)).Len() > lootPickupRange:
		failure = "too far away"
	default:
		delete(h.world.loot, msg.LootID)
	}
	h.world.mu.Unlock()

	if failure != "" {
		h.send(c, proto.TypeLootPickupResponse, lootPickupResponse{
			Success: false, LootID: msg.LootID, Message: failure,
		})
		if expired {
			h.BroadcastAll(proto.TypeLootExpire, lootExpireMessage{LootID: msg.LootID})
			loggingEconomy.LootExpired(context.Background(), h.publisher, h.Tick(),
				logging.LootRef(msg.LootID))
		}
		return
	}

	player.mu.Lock()
	player.gold += drop.Gold
	total := player.gold
	player.mu.Unlock()

	go func() {
		if _, err := h.store.AddGold(context.Background(), playerID, drop.Gold); err != nil {
			h.logger.Printf("failed to persist gold for %s: %v", playerID, err)
		}
	}()

	h.send(c, proto.TypeLootPickupResponse, lootPickupResponse{
		Success: true,
		LootID:  drop.ID,
		Gold:    drop.Gold,
	})
	h.BroadcastExcept(c.ID, proto.TypeLootExpire, lootExpireMessage{LootID: drop.ID})
	loggingEconomy.LootPickedUp(context.Background(), h.publisher, h.Tick(),
		logging.PlayerRef(playerID), logging.LootRef(drop.ID), loggingEconomy.LootPickedUpPayload{
			ItemID: drop.ItemType,
			Gold:   drop.Gold,
		})
	loggingEconomy.GoldAwarded(context.Background(), h.publisher, h.Tick(),
		logging.PlayerRef(playerID), loggingEconomy.GoldAwardedPayload{
			Amount: drop.Gold,
			Total:  total,
			Reason: "loot_pickup",
		})
}

// RunLootSweep evicts drops past their TTL.
func (h *Hub) RunLootSweep(ctx context.Context) error {
	ticker := time.NewTicker(lootSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for _, lootID := range h.expireLoot(now) {
				h.BroadcastAll(proto.TypeLootExpire, lootExpireMessage{LootID: lootID})
				loggingEconomy.LootExpired(context.Background(), h.publisher, h.Tick(),
					logging.LootRef(lootID))
			}
		}
	}
}

func (h *Hub) expireLoot(now time.Time) []string {
	h.world.mu.Lock()
	defer h.world.mu.Unlock()
	var expired []string
	for id, drop := range h.world.loot {
		if now.After(drop.expiresAt) {
			delete(h.world.loot, id)
			expired = append(expired, id)
		}
	}
	return expired
}
