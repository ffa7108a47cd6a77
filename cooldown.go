package server

import "time"

// attackCooldown converts an attack speed (attacks per second) to the wait
// between accepted attacks. Non-positive speeds are invalid input and fall
// back to the default rather than dividing by zero.
func attackCooldown(attackSpeed float64) time.Duration {
	if attackSpeed <= 0 {
		return defaultAttackCooldown
	}
	return time.Duration(float64(time.Second) / attackSpeed)
}

// attackReadyLocked reports whether the player may attack at now and, when
// not, the exact remaining wait. A player who has never attacked is always
// ready. Callers hold p.mu.
func (p *playerState) attackReadyLocked(now time.Time) (bool, time.Duration) {
	if p.lastAttack.IsZero() {
		return true, 0
	}
	cooldown := attackCooldown(p.totalAttackSpeedLocked())
	elapsed := now.Sub(p.lastAttack)
	if elapsed >= cooldown {
		return true, 0
	}
	return false, cooldown - elapsed
}

// recordAttackLocked stamps the accepted attack. The resolver calls it under
// the same lock as attackReadyLocked so a burst of near-simultaneous attack
// messages cannot all validate against a stale timestamp.
func (p *playerState) recordAttackLocked(now time.Time) {
	p.lastAttack = now
}
