package server

import (
	"encoding/json"
	"testing"

	"duskhollow/server/internal/net/proto"
)

func TestExperienceGainMessageLevelsUp(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")

	h.OnMessage(c, encodeEnvelope(t, proto.TypeExperienceGain, proto.ExperienceGainPayload{Amount: 150}))

	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	level, xp := state.level, state.experience
	state.mu.Unlock()
	if level != 2 || xp != 50 {
		t.Fatalf("level=%d xp=%d after 150 xp, want 2/50", level, xp)
	}

	data, ok := transport.lastOfType(proto.TypeLevelUp)
	if !ok {
		t.Fatalf("no LevelUp broadcast")
	}
	var msg levelUpMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode LevelUp: %v", err)
	}
	if msg.Level != 2 || msg.StatPoints != statPointsPerLevel {
		t.Fatalf("LevelUp %+v", msg)
	}
}

func TestExperienceGainRejectsNonPositive(t *testing.T) {
	h := newTestHub(t)
	c, _ := joinPlayer(t, h, "p1", "Rella")

	h.OnMessage(c, encodeEnvelope(t, proto.TypeExperienceGain, proto.ExperienceGainPayload{Amount: -50}))

	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	xp := state.experience
	state.mu.Unlock()
	if xp != 0 {
		t.Fatalf("negative award changed xp to %d", xp)
	}
}

func TestHealthChangeAppliesAndBroadcasts(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")

	h.OnMessage(c, encodeEnvelope(t, proto.TypeHealthChange, proto.HealthChangePayload{Delta: -30}))

	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	health := state.health
	state.mu.Unlock()
	if health != defaultPlayerMaxHealth-30 {
		t.Fatalf("health %v, want %v", health, defaultPlayerMaxHealth-30)
	}

	data, ok := transport.lastOfType(proto.TypeHealthChange)
	if !ok {
		t.Fatalf("no HealthChange broadcast")
	}
	var msg healthChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode HealthChange: %v", err)
	}
	if msg.PlayerID != "p1" || msg.Health != defaultPlayerMaxHealth-30 {
		t.Fatalf("HealthChange %+v", msg)
	}
}

func TestHealthChangeIgnoredWhenDead(t *testing.T) {
	h := newTestHub(t)
	c, _ := joinPlayer(t, h, "p1", "Rella")
	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	state.health = 0
	state.mu.Unlock()

	h.OnMessage(c, encodeEnvelope(t, proto.TypeHealthChange, proto.HealthChangePayload{Delta: -10}))

	state.mu.Lock()
	health := state.health
	state.mu.Unlock()
	if health != 0 {
		t.Fatalf("dead player's health changed to %v", health)
	}
}

func TestAdminResetStats(t *testing.T) {
	h := newTestHub(t)
	c, transport := joinPlayer(t, h, "p1", "Rella")
	state := mustPlayer(t, h, "p1")
	state.mu.Lock()
	state.level = 9
	state.experience = 40
	state.strength = 50
	state.health = 3
	state.mu.Unlock()

	h.OnMessage(c, encodeEnvelope(t, proto.TypeAdminResetStats, nil))

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.level != 1 || state.experience != 0 {
		t.Fatalf("progression not reset: level=%d xp=%d", state.level, state.experience)
	}
	if state.strength != defaultPlayerStrength || state.health != defaultPlayerMaxHealth {
		t.Fatalf("stats not reset: str=%v health=%v", state.strength, state.health)
	}
	if _, ok := transport.lastOfType(proto.TypePlayerStatsUpdate); !ok {
		t.Fatalf("no stats update after reset")
	}
}
