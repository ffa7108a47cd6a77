package server

import (
	"encoding/json"

	"duskhollow/server/internal/net/proto"
)

// handleExperienceGain applies a client-reported experience award, for quest
// style rewards the server does not compute itself. Kill experience never
// flows through here.
func (h *Hub) handleExperienceGain(c *Conn, data json.RawMessage) {
	var msg proto.ExperienceGainPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Printf("discarding malformed experience gain from %s: %v", c.ID, err)
		return
	}
	if msg.Amount <= 0 {
		return
	}
	playerID := c.PlayerID()
	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	player, ok := h.world.Player(playerID)
	if !ok {
		return
	}
	h.grantExperience(player, msg.Amount)
}

// handleHealthChange applies a client-reported health delta (fall damage,
// hazards). Healing through this path is capped at max health; a drop to
// zero is handled like any other death.
func (h *Hub) handleHealthChange(c *Conn, data json.RawMessage) {
	var msg proto.HealthChangePayload
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Printf("discarding malformed health change from %s: %v", c.ID, err)
		return
	}
	playerID := c.PlayerID()
	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	player, ok := h.world.Player(playerID)
	if !ok {
		return
	}

	player.mu.Lock()
	if player.health <= 0 && msg.Delta < 0 {
		player.mu.Unlock()
		return
	}
	health := player.applyHealthDeltaLocked(msg.Delta)
	player.mu.Unlock()

	h.BroadcastAll(proto.TypeHealthChange, healthChangeMessage{
		PlayerID: playerID,
		Health:   health,
		Cause:    "environment",
	})
	if health <= 0 {
		h.notify(c, "info", "you died")
	}
	h.persistPlayer(player)
}

// handleAdminResetStats resets a player's progression to starting values.
// A development convenience; the payload carries no arguments.
func (h *Hub) handleAdminResetStats(c *Conn, _ json.RawMessage) {
	playerID := c.PlayerID()
	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	player, ok := h.world.Player(playerID)
	if !ok {
		return
	}

	player.mu.Lock()
	player.level = 1
	player.experience = 0
	player.strength = defaultPlayerStrength
	player.defense = defaultPlayerDefense
	player.speed = defaultPlayerSpeed
	player.maxHealth = defaultPlayerMaxHealth
	player.health = defaultPlayerMaxHealth
	snap := player.snapshotLocked()
	player.mu.Unlock()

	h.logger.Printf("reset stats for player %s", playerID)
	h.SendToPlayer(playerID, proto.TypePlayerStatsUpdate, playerStatsUpdate{Player: snap})
	h.persistPlayer(player)
}
