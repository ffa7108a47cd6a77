package economy

import (
	"context"

	"duskhollow/server/logging"
)

const (
	// EventLootDropped is emitted when an enemy death produces a drop.
	EventLootDropped logging.EventType = "economy.loot_dropped"
	// EventLootPickedUp is emitted when a pickup commits.
	EventLootPickedUp logging.EventType = "economy.loot_picked_up"
	// EventLootExpired is emitted when the sweep evicts a stale drop.
	EventLootExpired logging.EventType = "economy.loot_expired"
	// EventGoldAwarded is emitted when gold is credited to a player.
	EventGoldAwarded logging.EventType = "economy.gold_awarded"
)

type LootDroppedPayload struct {
	ItemID string `json:"itemId"`
	Rarity string `json:"rarity"`
}

type LootPickedUpPayload struct {
	ItemID string `json:"itemId"`
	Gold   int    `json:"gold"`
}

type GoldAwardedPayload struct {
	Amount int    `json:"amount"`
	Total  int    `json:"total"`
	Reason string `json:"reason"`
}

func LootDropped(ctx context.Context, pub logging.Publisher, tick uint64, loot logging.EntityRef, payload LootDroppedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLootDropped,
		Tick:     tick,
		Actor:    loot,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

func LootPickedUp(ctx context.Context, pub logging.Publisher, tick uint64, player, loot logging.EntityRef, payload LootPickedUpPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLootPickedUp,
		Tick:     tick,
		Actor:    player,
		Targets:  []logging.EntityRef{loot},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

func LootExpired(ctx context.Context, pub logging.Publisher, tick uint64, loot logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLootExpired,
		Tick:     tick,
		Actor:    loot,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
	})
}

func GoldAwarded(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef, payload GoldAwardedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGoldAwarded,
		Tick:     tick,
		Actor:    player,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
