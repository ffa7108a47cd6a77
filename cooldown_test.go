package server

import (
	"testing"
	"time"
)

func TestAttackCooldown(t *testing.T) {
	cases := []struct {
		speed float64
		want  time.Duration
	}{
		{2.0, 500 * time.Millisecond},
		{0.5, 2 * time.Second},
		{1.0, time.Second},
		{0, defaultAttackCooldown},
		{-3, defaultAttackCooldown},
	}
	for _, tc := range cases {
		if got := attackCooldown(tc.speed); got != tc.want {
			t.Fatalf("attackCooldown(%v) = %v, want %v", tc.speed, got, tc.want)
		}
	}
}

func TestAttackReadyNeverAttacked(t *testing.T) {
	p := &playerState{strength: 10}
	ready, remaining := p.attackReadyLocked(time.Now())
	if !ready || remaining != 0 {
		t.Fatalf("fresh player not ready: ready=%v remaining=%v", ready, remaining)
	}
}

func TestAttackReadyBoundary(t *testing.T) {
	base := time.Now()
	p := &playerState{lastAttack: base}

	// Default speed 1.0 means a 1s cooldown.
	if ready, _ := p.attackReadyLocked(base.Add(999 * time.Millisecond)); ready {
		t.Fatalf("ready 1ms before cooldown elapsed")
	}
	if ready, _ := p.attackReadyLocked(base.Add(time.Second)); !ready {
		t.Fatalf("not ready exactly at cooldown")
	}
	if ready, _ := p.attackReadyLocked(base.Add(1001 * time.Millisecond)); !ready {
		t.Fatalf("not ready 1ms after cooldown")
	}
}

func TestAttackReadyUsesEquipmentSpeed(t *testing.T) {
	base := time.Now()
	p := &playerState{
		lastAttack: base,
		bonus:      EquipmentBonus{AttackSpeed: 1.0}, // 2 attacks per second
	}
	if ready, _ := p.attackReadyLocked(base.Add(499 * time.Millisecond)); ready {
		t.Fatalf("ready before 500ms cooldown at speed 2.0")
	}
	if ready, _ := p.attackReadyLocked(base.Add(501 * time.Millisecond)); !ready {
		t.Fatalf("not ready after 500ms cooldown at speed 2.0")
	}
}

func TestBurstValidatesAgainstRecordedAttack(t *testing.T) {
	now := time.Now()
	p := &playerState{}

	accepted := 0
	for i := 0; i < 5; i++ {
		p.mu.Lock()
		if ready, _ := p.attackReadyLocked(now); ready {
			p.recordAttackLocked(now)
			accepted++
		}
		p.mu.Unlock()
	}
	if accepted != 1 {
		t.Fatalf("burst of 5 simultaneous attacks accepted %d, want 1", accepted)
	}
}
