package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"duskhollow/server/internal/net/proto"
	"duskhollow/server/logging"
	loggingCombat "duskhollow/server/logging/combat"
)

// attackTypeMultiplier maps the declared attack kind to its damage scale.
// Unknown kinds resolve as basic attacks rather than being rejected.
func attackTypeMultiplier(attackType string) float64 {
	switch attackType {
	case "power":
		return powerAttackMultiplier
	case "critical":
		return criticalAttackMultiplier
	default:
		return basicAttackMultiplier
	}
}

// attackDamage is the full damage computation for one accepted swing.
func attackDamage(attackPower float64, level int, attackType string) float64 {
	base := baseAttackDamage + attackPower*attackPowerScale + float64(level)*levelDamageScale
	return base * attackTypeMultiplier(attackType)
}

// handleCombatAction resolves one attack request. Validation and the attack
// timestamp are committed under the attacker's lock so a burst of requests
// inside one cooldown window yields exactly one accepted swing.
func (h *Hub) handleCombatAction(c *Conn, data json.RawMessage) {
	var msg proto.CombatActionPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Printf("discarding malformed combat action from %s: %v", c.ID, err)
		return
	}

	playerID := c.PlayerID()
	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	attacker, ok := h.world.Player(playerID)
	if !ok {
		h.logger.Printf("combat action ignored for unknown player %s", playerID)
		return
	}

	now := time.Now()
	attacker.mu.Lock()
	if attacker.health <= 0 {
		attacker.mu.Unlock()
		h.notify(c, "warning", "you are dead")
		return
	}
	attackerPos := attacker.position
	attacker.mu.Unlock()
	h.noteClaimDrift(playerID, attackerPos, msg.X, msg.Y, msg.Z)

	// Target and range are settled before the cooldown is touched: a swing
	// rejected here must not consume the attack window.
	var enemy *enemyState
	if msg.TargetID != "" {
		if found, ok := h.world.Enemy(msg.TargetID); ok {
			found.mu.Lock()
			alive := found.alive
			enemyPos := found.position
			found.mu.Unlock()
			if !alive {
				h.notify(c, "info", "target is already dead")
				return
			}
			if distance := attackerPos.Sub(enemyPos).Len(); distance > meleeRange {
				h.notify(c, "info", "target out of range")
				loggingCombat.AttackRejected(context.Background(), h.publisher, h.Tick(),
					logging.PlayerRef(playerID), loggingCombat.RejectPayload{
						Reason: "out_of_range",
						Range:  distance,
					})
				return
			}
			enemy = found
		} else if _, ok := h.world.Player(msg.TargetID); !ok {
			h.logger.Printf("attack from %s targets unknown entity %s", playerID, msg.TargetID)
			return
		}
	}

	attacker.mu.Lock()
	if attacker.health <= 0 {
		attacker.mu.Unlock()
		h.notify(c, "warning", "you are dead")
		return
	}
	ready, remaining := attacker.attackReadyLocked(now)
	if !ready {
		attacker.mu.Unlock()
		h.notify(c, "info", cooldownNotice(remaining))
		loggingCombat.AttackRejected(context.Background(), h.publisher, h.Tick(),
			logging.PlayerRef(playerID), loggingCombat.RejectPayload{
				Reason:    "cooldown",
				RemainsMS: remaining.Milliseconds(),
			})
		return
	}
	attacker.recordAttackLocked(now)
	attackPower := attacker.totalAttackPowerLocked()
	attackerLevel := attacker.level
	attacker.mu.Unlock()

	// Every accepted swing is visible to the room whether or not it lands.
	// Player targets receive the attack animation only; damage between
	// players is not applied.
	h.BroadcastAll(proto.TypePlayerAttack, playerAttackMessage{
		AttackerID: playerID,
		TargetID:   msg.TargetID,
		AttackType: msg.AttackType,
	})

	if enemy != nil {
		h.resolveEnemyHit(c, attacker, enemy, msg, attackerLevel, attackPower)
	}
}

// noteClaimDrift compares a client's self-reported position against the live
// one. The live position stays authoritative; a large disagreement is logged
// for cheat triage.
func (h *Hub) noteClaimDrift(playerID string, live mgl64.Vec3, x, y, z float64) {
	if x == 0 && y == 0 && z == 0 {
		return
	}
	if drift := live.Sub(vec3(x, y, z)).Len(); drift > claimedPositionTolerance {
		h.logger.Printf("player %s claims a position %.1f units from the live one", playerID, drift)
	}
}

func (h *Hub) resolveEnemyHit(c *Conn, attacker *playerState, enemy *enemyState, msg proto.CombatActionPayload, attackerLevel int, attackPower float64) {
	enemy.mu.Lock()
	if !enemy.alive {
		// Lost the race against another killing blow after the range gate.
		enemy.mu.Unlock()
		h.notify(c, "info", "target is already dead")
		return
	}

	damage := attackDamage(attackPower, attackerLevel, msg.AttackType)
	health, killed := enemy.applyDamageLocked(damage)
	enemyID := enemy.id
	xp := 0
	if killed {
		xp = enemy.experienceValueLocked()
		if enemy.defaultSpawn {
			enemy.respawnAt = time.Now().Add(defaultEnemyRespawnDelay)
		}
	}
	enemy.mu.Unlock()

	h.world.wave.recordDamage(damage)
	loggingCombat.Damage(context.Background(), h.publisher, h.Tick(),
		logging.PlayerRef(attacker.id), logging.EnemyRef(enemyID), loggingCombat.DamagePayload{
			AttackType:   msg.AttackType,
			Amount:       damage,
			TargetHealth: health,
		})
	h.BroadcastAll(proto.TypeEnemyDamage, enemyDamageMessage{
		EnemyID:    enemyID,
		AttackerID: attacker.id,
		Damage:     damage,
		Health:     health,
	})

	if !killed {
		return
	}

	h.BroadcastAll(proto.TypeEnemyDeath, enemyDeathMessage{EnemyID: enemyID, KillerID: attacker.id})
	loggingCombat.Defeat(context.Background(), h.publisher, h.Tick(),
		logging.PlayerRef(attacker.id), logging.EnemyRef(enemyID))
	h.brain.Forget(enemyID)
	h.world.wave.recordKill(xp)

	h.grantExperience(attacker, xp)
	h.rollLoot(enemy)
	h.world.wave.checkCompletion(h)
}

// grantExperience applies a kill or quest reward and announces stat changes
// and any level-ups.
func (h *Hub) grantExperience(p *playerState, amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	levels := p.grantExperienceLocked(amount)
	snap := p.snapshotLocked()
	p.mu.Unlock()

	h.SendToPlayer(p.id, proto.TypePlayerStatsUpdate, playerStatsUpdate{Player: snap})
	if levels > 0 {
		h.BroadcastAll(proto.TypeLevelUp, levelUpMessage{
			PlayerID:   p.id,
			Level:      snap.Level,
			StatPoints: levels * statPointsPerLevel,
		})
		loggingCombat.LevelUp(context.Background(), h.publisher, h.Tick(),
			logging.PlayerRef(p.id), loggingCombat.LevelUpPayload{
				NewLevel:   snap.Level,
				StatPoints: levels * statPointsPerLevel,
			})
	}
	h.persistPlayer(p)
}

// cooldownNotice words the rejection by how close the player is to ready.
func cooldownNotice(remaining time.Duration) string {
	if remaining < 200*time.Millisecond {
		return "almost ready"
	}
	return fmt.Sprintf("attack not ready, wait %.1fs", remaining.Seconds())
}
