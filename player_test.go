package server

import "testing"

func TestGrantExperienceSingleLevel(t *testing.T) {
	state := newPlayerState(newDefaultRecord("p1", "Rella"), EquipmentBonus{}, vec3(0, 0, 0))

	state.mu.Lock()
	levels := state.grantExperienceLocked(100)
	state.mu.Unlock()

	if levels != 1 {
		t.Fatalf("gained %d levels, want 1", levels)
	}
	if state.level != 2 || state.experience != 0 {
		t.Fatalf("level=%d xp=%d, want 2/0", state.level, state.experience)
	}
	if state.strength != defaultPlayerStrength+2 || state.defense != defaultPlayerDefense+2 || state.speed != defaultPlayerSpeed+1 {
		t.Fatalf("stats after level up: str=%v def=%v spd=%v", state.strength, state.defense, state.speed)
	}
}

func TestGrantExperienceMultipleLevels(t *testing.T) {
	state := newPlayerState(newDefaultRecord("p1", "Rella"), EquipmentBonus{}, vec3(0, 0, 0))

	// 100 for level 2, 200 for level 3, 50 spare.
	state.mu.Lock()
	levels := state.grantExperienceLocked(350)
	state.mu.Unlock()

	if levels != 2 {
		t.Fatalf("gained %d levels, want 2", levels)
	}
	if state.level != 3 || state.experience != 50 {
		t.Fatalf("level=%d xp=%d, want 3/50", state.level, state.experience)
	}
}

func TestGrantExperienceRejectsNonPositive(t *testing.T) {
	state := newPlayerState(newDefaultRecord("p1", "Rella"), EquipmentBonus{}, vec3(0, 0, 0))
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.grantExperienceLocked(0) != 0 || state.grantExperienceLocked(-10) != 0 {
		t.Fatalf("non-positive experience granted a level")
	}
	if state.experience != 0 {
		t.Fatalf("experience changed to %d", state.experience)
	}
}

func TestApplyHealthDeltaClamps(t *testing.T) {
	state := newPlayerState(newDefaultRecord("p1", "Rella"), EquipmentBonus{}, vec3(0, 0, 0))

	state.mu.Lock()
	defer state.mu.Unlock()
	if health := state.applyHealthDeltaLocked(-1000); health != 0 {
		t.Fatalf("health %v after overkill, want 0", health)
	}
	if health := state.applyHealthDeltaLocked(1000); health != state.maxHealth {
		t.Fatalf("health %v after overheal, want %v", health, state.maxHealth)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	base := newDefaultRecord("p1", "Rella")
	base.Username = "rella"
	base.PasswordHash = "digest"
	state := newPlayerState(base, EquipmentBonus{AttackPower: 5}, vec3(1, 2, 3))

	state.mu.Lock()
	state.gold = 42
	state.grantExperienceLocked(100)
	state.mu.Unlock()

	record := state.record(base)
	if record.Gold != 42 || record.Level != 2 {
		t.Fatalf("record gold=%d level=%d, want 42/2", record.Gold, record.Level)
	}
	if record.X != 1 || record.Y != 2 || record.Z != 3 {
		t.Fatalf("record position (%v,%v,%v)", record.X, record.Y, record.Z)
	}
	// Credentials survive the round trip untouched.
	if record.Username != "rella" || record.PasswordHash != "digest" {
		t.Fatalf("credentials lost in round trip")
	}
}

func TestEnemyDamageKillsOnce(t *testing.T) {
	enemy := &enemyState{id: "e1", health: 30, maxHealth: 30, level: 2, alive: true}

	enemy.mu.Lock()
	defer enemy.mu.Unlock()

	health, killed := enemy.applyDamageLocked(20)
	if killed || health != 10 {
		t.Fatalf("first hit: health=%v killed=%v", health, killed)
	}
	health, killed = enemy.applyDamageLocked(20)
	if !killed || health != 0 {
		t.Fatalf("killing hit: health=%v killed=%v", health, killed)
	}
	// A third hit on the corpse never reports the kill again.
	if _, killed = enemy.applyDamageLocked(20); killed {
		t.Fatalf("corpse hit claimed the kill")
	}
}

func TestEnemyExperienceValue(t *testing.T) {
	enemy := &enemyState{level: 4}
	enemy.mu.Lock()
	defer enemy.mu.Unlock()
	if xp := enemy.experienceValueLocked(); xp != 4*killExperiencePerEnemyLevel {
		t.Fatalf("xp %d, want %d", xp, 4*killExperiencePerEnemyLevel)
	}
	enemy.elite = true
	if xp := enemy.experienceValueLocked(); xp != 4*killExperiencePerEnemyLevel*eliteExperienceMultiplier {
		t.Fatalf("elite xp %d, want %d", xp, 4*killExperiencePerEnemyLevel*eliteExperienceMultiplier)
	}
}
