package server

import (
	"context"
	"time"

	"duskhollow/server/internal/ai"
	"duskhollow/server/internal/net/proto"
)

// aiCapabilities bridges the AI module to the hub without exposing the
// connection registry.
type aiCapabilities struct {
	hub *Hub
}

func (a aiCapabilities) Broadcast(msgType string, payload any) {
	a.hub.BroadcastAll(msgType, payload)
}

func (a aiCapabilities) SendToPlayer(playerID, msgType string, payload any) {
	a.hub.SendToPlayer(playerID, msgType, payload)
}

func (a aiCapabilities) UpdateHealth(playerID string, delta float64) (float64, bool) {
	player, ok := a.hub.world.Player(playerID)
	if !ok {
		return 0, false
	}
	player.mu.Lock()
	if player.health <= 0 {
		health := player.health
		player.mu.Unlock()
		return health, false
	}
	health := player.applyHealthDeltaLocked(delta)
	player.mu.Unlock()
	return health, true
}

func (a aiCapabilities) PersistHealth(ctx context.Context, playerID string, health float64) {
	if err := a.hub.store.SetHealth(ctx, playerID, health); err != nil {
		a.hub.logger.Printf("failed to persist health for %s: %v", playerID, err)
	}
}

// mitigate scales incoming enemy damage by the defender's defense power.
func mitigate(damage, defensePower float64) float64 {
	return damage * (100 / (100 + defensePower))
}

// RunAI drives the enemy decision loop at a fixed tick.
func (h *Hub) RunAI(ctx context.Context) error {
	ticker := time.NewTicker(aiTickInterval)
	defer ticker.Stop()
	caps := aiCapabilities{hub: h}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			h.aiTick(ctx, now, caps)
		}
	}
}

func (h *Hub) aiTick(ctx context.Context, now time.Time, caps aiCapabilities) {
	worldCtx := h.buildAIContext(now, caps)
	if len(worldCtx.Players) == 0 {
		return
	}

	var moved []Enemy
	for _, info := range worldCtx.Enemies {
		decision := h.brain.Decide(worldCtx, info)
		switch decision.Kind {
		case ai.DecideMove:
			if enemy, ok := h.world.Enemy(info.ID); ok {
				enemy.mu.Lock()
				enemy.position = decision.MoveTo
				enemy.lastUpdate = now
				moved = append(moved, enemy.snapshotLocked())
				enemy.mu.Unlock()
			}
		case ai.DecideStrike:
			for i := range worldCtx.Players {
				if worldCtx.Players[i].ID == decision.TargetID {
					h.resolveEnemyStrike(ctx, caps, info, worldCtx.Players[i])
					break
				}
			}
		}
	}
	if len(moved) > 0 {
		h.BroadcastAll(proto.TypeEnemyUpdate, enemyUpdateMessage{Enemies: moved})
	}
}

func (h *Hub) buildAIContext(now time.Time, caps aiCapabilities) ai.WorldContext {
	h.world.mu.Lock()
	playerStates := make([]*playerState, 0, len(h.world.players))
	for _, state := range h.world.players {
		playerStates = append(playerStates, state)
	}
	enemyStates := make([]*enemyState, 0, len(h.world.enemies))
	for _, state := range h.world.enemies {
		enemyStates = append(enemyStates, state)
	}
	h.world.mu.Unlock()

	players := make([]ai.PlayerInfo, 0, len(playerStates))
	for _, state := range playerStates {
		state.mu.Lock()
		players = append(players, ai.PlayerInfo{
			ID:           state.id,
			Position:     state.position,
			Health:       state.health,
			DefensePower: state.totalDefensePowerLocked(),
		})
		state.mu.Unlock()
	}
	enemies := make([]ai.EnemyInfo, 0, len(enemyStates))
	for _, state := range enemyStates {
		state.mu.Lock()
		enemies = append(enemies, ai.EnemyInfo{
			ID:       state.id,
			Type:     state.enemyType,
			Position: state.position,
			Health:   state.health,
			Damage:   state.damage,
			Level:    state.level,
			Alive:    state.alive,
		})
		state.mu.Unlock()
	}
	return ai.WorldContext{Now: now, Players: players, Enemies: enemies, Caps: caps}
}

// resolveEnemyStrike lands one enemy hit on a player, mitigated by the
// defense carried on the context snapshot. All world access goes through the
// capability interface.
func (h *Hub) resolveEnemyStrike(ctx context.Context, caps ai.Capabilities, enemy ai.EnemyInfo, target ai.PlayerInfo) {
	damage := mitigate(enemy.Damage, target.DefensePower)
	health, ok := caps.UpdateHealth(target.ID, -damage)
	if !ok {
		return
	}

	caps.Broadcast(proto.TypeHealthChange, healthChangeMessage{
		PlayerID: target.ID,
		Health:   health,
		Cause:    "enemy_attack",
		SourceID: enemy.ID,
	})
	if health <= 0 {
		h.logger.Printf("player %s was killed by %s", target.ID, enemy.ID)
		caps.SendToPlayer(target.ID, proto.TypeSystemNotification, systemNotification{
			Severity: "info", Message: "you died",
		})
	}
	caps.PersistHealth(ctx, target.ID, health)
}
