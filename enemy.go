package server

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Enemy is the wire-visible snapshot of a spawned hostile entity.
type Enemy struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Rotation  float64 `json:"rotation"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Level     int     `json:"level"`
	Damage    float64 `json:"damage"`
	Elite     bool    `json:"elite,omitempty"`
	Alive     bool    `json:"alive"`
}

// enemyState is the authoritative live entry. Health transitions are
// serialized under mu; alive flips to false exactly when health reaches 0.
type enemyState struct {
	mu sync.Mutex

	id        string
	enemyType string
	position  mgl64.Vec3
	rotation  float64
	health    float64
	maxHealth float64
	level     int
	damage    float64
	elite     bool
	alive     bool

	// defaultSpawn marks the hand-placed enemies that respawn on a timer.
	// Wave-spawned enemies have it unset and are swept at level cleanup.
	defaultSpawn bool
	respawnAt    time.Time

	lastUpdate time.Time
}

func (e *enemyState) snapshotLocked() Enemy {
	return Enemy{
		ID:        e.id,
		Type:      e.enemyType,
		X:         e.position.X(),
		Y:         e.position.Y(),
		Z:         e.position.Z(),
		Rotation:  e.rotation,
		Health:    e.health,
		MaxHealth: e.maxHealth,
		Level:     e.level,
		Damage:    e.damage,
		Elite:     e.elite,
		Alive:     e.alive,
	}
}

func (e *enemyState) snapshot() Enemy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// applyDamageLocked clamps health at 0 and reports whether this call was the
// killing blow. Damage landing on an already-dead enemy is ignored so two
// near-simultaneous hits cannot both claim the kill.
func (e *enemyState) applyDamageLocked(amount float64) (float64, bool) {
	if !e.alive || amount <= 0 {
		return e.health, false
	}
	e.health -= amount
	e.lastUpdate = time.Now()
	if e.health <= 0 {
		e.health = 0
		e.alive = false
		return 0, true
	}
	return e.health, false
}

// experienceValue is the kill reward. Elite enemies are worth double.
func (e *enemyState) experienceValueLocked() int {
	xp := e.level * killExperiencePerEnemyLevel
	if e.elite {
		xp *= eliteExperienceMultiplier
	}
	return xp
}
