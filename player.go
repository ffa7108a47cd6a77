package server

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"duskhollow/server/internal/storage"
)

// Player is the wire-visible snapshot of a logged-in player. AttackPower,
// DefensePower and AttackSpeed are derived totals (base stat plus equipment
// bonus) recomputed on every snapshot, never stored.
type Player struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Rotation  float64 `json:"rotation"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`

	Level      int `json:"level"`
	Experience int `json:"experience"`
	Gold       int `json:"gold"`

	Strength float64 `json:"strength"`
	Defense  float64 `json:"defense"`
	Speed    float64 `json:"speed"`

	AttackPower  float64 `json:"attackPower"`
	DefensePower float64 `json:"defensePower"`
	AttackSpeed  float64 `json:"attackSpeed"`
}

// playerState is the authoritative live entry. Compound updates (health
// read-modify-write, attack stamping) hold mu so two damage sources or a
// burst of attack messages cannot interleave.
type playerState struct {
	mu sync.Mutex

	id   string
	name string

	position mgl64.Vec3
	velocity mgl64.Vec3
	rotation float64

	health    float64
	maxHealth float64

	level      int
	experience int
	gold       int

	strength float64
	defense  float64
	speed    float64

	// bonus holds equipment-derived stats, kept separate from the base
	// stats above and summed on read.
	bonus EquipmentBonus

	lastAttack time.Time
	online     bool
	lastUpdate time.Time
}

func newPlayerState(record storage.PlayerRecord, bonus EquipmentBonus, position mgl64.Vec3) *playerState {
	health := record.Health
	maxHealth := record.MaxHealth
	if maxHealth <= 0 {
		maxHealth = defaultPlayerMaxHealth
	}
	// A player who logged out dead comes back at full health.
	if health <= 0 {
		health = maxHealth
	}
	return &playerState{
		id:         record.ID,
		name:       record.Name,
		position:   position,
		health:     health,
		maxHealth:  maxHealth,
		level:      max(record.Level, 1),
		experience: record.Experience,
		gold:       record.Gold,
		strength:   record.Strength,
		defense:    record.Defense,
		speed:      record.Speed,
		bonus:      bonus,
		online:     true,
		lastUpdate: time.Now(),
	}
}

// Callers hold p.mu for the locked variants.

func (p *playerState) totalAttackPowerLocked() float64 {
	return p.strength + p.bonus.AttackPower
}

func (p *playerState) totalDefensePowerLocked() float64 {
	return p.defense + p.bonus.DefensePower
}

func (p *playerState) totalAttackSpeedLocked() float64 {
	return baseAttackSpeed + p.bonus.AttackSpeed
}

// applyHealthDeltaLocked clamps health into [0, maxHealth] and returns the
// result.
func (p *playerState) applyHealthDeltaLocked(delta float64) float64 {
	p.health += delta
	if p.health < 0 {
		p.health = 0
	}
	if p.health > p.maxHealth {
		p.health = p.maxHealth
	}
	p.lastUpdate = time.Now()
	return p.health
}

func (p *playerState) snapshotLocked() Player {
	return Player{
		ID:           p.id,
		Name:         p.name,
		X:            p.position.X(),
		Y:            p.position.Y(),
		Z:            p.position.Z(),
		Rotation:     p.rotation,
		Health:       p.health,
		MaxHealth:    p.maxHealth,
		Level:        p.level,
		Experience:   p.experience,
		Gold:         p.gold,
		Strength:     p.strength,
		Defense:      p.defense,
		Speed:        p.speed,
		AttackPower:  p.totalAttackPowerLocked(),
		DefensePower: p.totalDefensePowerLocked(),
		AttackSpeed:  p.totalAttackSpeedLocked(),
	}
}

func (p *playerState) snapshot() Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// grantExperienceLocked adds experience and resolves any level-ups. It
// returns the number of levels gained. Stat points per level are applied as
// +2 strength, +2 defense, +1 speed.
func (p *playerState) grantExperienceLocked(amount int) int {
	if amount <= 0 {
		return 0
	}
	p.experience += amount
	levels := 0
	for p.experience >= p.level*experiencePerLevel {
		p.experience -= p.level * experiencePerLevel
		p.level++
		levels++
		p.strength += 2
		p.defense += 2
		p.speed++
	}
	p.lastUpdate = time.Now()
	return levels
}

// record converts the live state back to its durable shape for persistence.
// Derived totals are intentionally absent.
func (p *playerState) record(base storage.PlayerRecord) storage.PlayerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	base.ID = p.id
	base.Name = p.name
	base.Health = p.health
	base.MaxHealth = p.maxHealth
	base.Level = p.level
	base.Experience = p.experience
	base.Gold = p.gold
	base.Strength = p.strength
	base.Defense = p.defense
	base.Speed = p.speed
	base.X = p.position.X()
	base.Y = p.position.Y()
	base.Z = p.position.Z()
	return base
}
