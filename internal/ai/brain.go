package ai

import (
	"context"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Capabilities is the narrow surface the AI module is allowed to touch. It
// decouples enemy behavior from the hub's concrete connection registry.
type Capabilities interface {
	Broadcast(msgType string, payload any)
	SendToPlayer(playerID, msgType string, payload any)
	// UpdateHealth applies a delta to the live player state and returns the
	// clamped result. Persistence happens separately via PersistHealth.
	UpdateHealth(playerID string, delta float64) (float64, bool)
	PersistHealth(ctx context.Context, playerID string, health float64)
}

// PlayerInfo is a read-only view of one player for decision making.
// DefensePower is the equipped total, so strike damage can be mitigated
// without reaching back into live state.
type PlayerInfo struct {
	ID           string
	Position     mgl64.Vec3
	Health       float64
	DefensePower float64
}

// EnemyInfo is a read-only view of one enemy.
type EnemyInfo struct {
	ID       string
	Type     string
	Position mgl64.Vec3
	Health   float64
	Damage   float64
	Level    int
	Alive    bool
}

// WorldContext is the snapshot handed to every decision callback.
type WorldContext struct {
	Now     time.Time
	Players []PlayerInfo
	Enemies []EnemyInfo
	Caps    Capabilities
}

// DecisionKind enumerates what an enemy wants to do this tick.
type DecisionKind int

const (
	DecideIdle DecisionKind = iota
	DecideMove
	DecideStrike
)

// Decision is the outcome of one enemy's thinking for one tick.
type Decision struct {
	Kind     DecisionKind
	MoveTo   mgl64.Vec3
	TargetID string
}

// Brain produces per-enemy decisions from a world context snapshot. Forget
// releases any per-enemy state once the enemy leaves the world.
type Brain interface {
	Decide(ctx WorldContext, self EnemyInfo) Decision
	Forget(enemyID string)
}

// ChaseBrain is the shipped default: aggro on the nearest player inside the
// aggro radius, close distance, and strike on a fixed per-enemy cooldown.
type ChaseBrain struct {
	AggroRadius    float64
	StrikeRange    float64
	StrikeCooldown time.Duration
	MoveStep       float64

	mu          sync.Mutex
	lastStrikes map[string]time.Time
}

func NewChaseBrain() *ChaseBrain {
	return &ChaseBrain{
		AggroRadius:    40,
		StrikeRange:    4,
		StrikeCooldown: 2 * time.Second,
		MoveStep:       1.5,
		lastStrikes:    make(map[string]time.Time),
	}
}

func (b *ChaseBrain) Decide(ctx WorldContext, self EnemyInfo) Decision {
	if !self.Alive {
		return Decision{Kind: DecideIdle}
	}

	var target *PlayerInfo
	best := b.AggroRadius
	for i := range ctx.Players {
		player := &ctx.Players[i]
		if player.Health <= 0 {
			continue
		}
		dist := player.Position.Sub(self.Position).Len()
		if dist <= best {
			best = dist
			target = player
		}
	}
	if target == nil {
		return Decision{Kind: DecideIdle}
	}

	if best <= b.StrikeRange {
		b.mu.Lock()
		last, struck := b.lastStrikes[self.ID]
		if struck && ctx.Now.Sub(last) < b.StrikeCooldown {
			b.mu.Unlock()
			return Decision{Kind: DecideIdle}
		}
		b.lastStrikes[self.ID] = ctx.Now
		b.mu.Unlock()
		return Decision{Kind: DecideStrike, TargetID: target.ID}
	}

	direction := target.Position.Sub(self.Position)
	if length := direction.Len(); length > 0 {
		direction = direction.Mul(b.MoveStep / length)
	}
	return Decision{Kind: DecideMove, MoveTo: self.Position.Add(direction)}
}

// Forget drops per-enemy strike state once an enemy is removed from the world.
func (b *ChaseBrain) Forget(enemyID string) {
	b.mu.Lock()
	delete(b.lastStrikes, enemyID)
	b.mu.Unlock()
}
