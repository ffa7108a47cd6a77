package combat

import (
	"context"

	"duskhollow/server/logging"
)

const (
	// EventDamage is emitted when an attack deals damage to a target.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a target's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventAttackRejected is emitted when a combat action fails validation.
	EventAttackRejected logging.EventType = "combat.attack_rejected"
	// EventLevelUp is emitted when a kill pushes a player past a level threshold.
	EventLevelUp logging.EventType = "combat.level_up"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	AttackType   string  `json:"attackType"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// RejectPayload captures why an attack was refused.
type RejectPayload struct {
	Reason    string  `json:"reason"`
	RemainsMS int64   `json:"remainsMs,omitempty"`
	Range     float64 `json:"range,omitempty"`
}

// LevelUpPayload records the level advance and stat grant.
type LevelUpPayload struct {
	NewLevel   int `json:"newLevel"`
	StatPoints int `json:"statPoints"`
}

func Damage(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef, payload DamagePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, attacker, target logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
}

func AttackRejected(ctx context.Context, pub logging.Publisher, tick uint64, attacker logging.EntityRef, payload RejectPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttackRejected,
		Tick:     tick,
		Actor:    attacker,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func LevelUp(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef, payload LevelUpPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelUp,
		Tick:     tick,
		Actor:    player,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
