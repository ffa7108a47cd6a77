package ai

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func testContext(now time.Time, players []PlayerInfo, enemies []EnemyInfo) WorldContext {
	return WorldContext{Now: now, Players: players, Enemies: enemies}
}

func TestChaseBrainIdleWhenNoTarget(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: true}

	// No players at all.
	if d := brain.Decide(testContext(time.Now(), nil, nil), self); d.Kind != DecideIdle {
		t.Fatalf("decision %v with no players, want idle", d.Kind)
	}

	// Player outside the aggro radius.
	far := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{100, 0, 0}, Health: 50}}
	if d := brain.Decide(testContext(time.Now(), far, nil), self); d.Kind != DecideIdle {
		t.Fatalf("decision %v for distant player, want idle", d.Kind)
	}

	// Dead players are not targets.
	dead := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{5, 0, 0}, Health: 0}}
	if d := brain.Decide(testContext(time.Now(), dead, nil), self); d.Kind != DecideIdle {
		t.Fatalf("decision %v for dead player, want idle", d.Kind)
	}
}

func TestChaseBrainMovesTowardTarget(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: true}
	players := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{20, 0, 0}, Health: 50}}

	d := brain.Decide(testContext(time.Now(), players, nil), self)
	if d.Kind != DecideMove {
		t.Fatalf("decision %v, want move", d.Kind)
	}
	if d.MoveTo.X() <= 0 || d.MoveTo.X() >= 20 {
		t.Fatalf("move target %v not between enemy and player", d.MoveTo)
	}
	step := d.MoveTo.Sub(self.Position).Len()
	if step > brain.MoveStep+1e-9 {
		t.Fatalf("step %v exceeds move step %v", step, brain.MoveStep)
	}
}

func TestChaseBrainStrikesOnCooldown(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: true}
	players := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{2, 0, 0}, Health: 50}}
	now := time.Now()

	d := brain.Decide(testContext(now, players, nil), self)
	if d.Kind != DecideStrike || d.TargetID != "p1" {
		t.Fatalf("first decision %+v, want strike on p1", d)
	}

	// Inside the cooldown the enemy holds.
	d = brain.Decide(testContext(now.Add(time.Second), players, nil), self)
	if d.Kind != DecideIdle {
		t.Fatalf("decision %v inside strike cooldown, want idle", d.Kind)
	}

	// After the cooldown it strikes again.
	d = brain.Decide(testContext(now.Add(brain.StrikeCooldown+time.Millisecond), players, nil), self)
	if d.Kind != DecideStrike {
		t.Fatalf("decision %v after cooldown, want strike", d.Kind)
	}
}

func TestChaseBrainTargetsNearestPlayer(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: true}
	players := []PlayerInfo{
		{ID: "far", Position: mgl64.Vec3{30, 0, 0}, Health: 50},
		{ID: "near", Position: mgl64.Vec3{3, 0, 0}, Health: 50},
	}

	d := brain.Decide(testContext(time.Now(), players, nil), self)
	if d.Kind != DecideStrike || d.TargetID != "near" {
		t.Fatalf("decision %+v, want strike on near", d)
	}
}

func TestChaseBrainDeadEnemyIdles(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: false}
	players := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{2, 0, 0}, Health: 50}}
	if d := brain.Decide(testContext(time.Now(), players, nil), self); d.Kind != DecideIdle {
		t.Fatalf("dead enemy decided %v, want idle", d.Kind)
	}
}

func TestForgetReleasesStrikeState(t *testing.T) {
	brain := NewChaseBrain()
	self := EnemyInfo{ID: "e1", Position: mgl64.Vec3{0, 0, 0}, Alive: true}
	players := []PlayerInfo{{ID: "p1", Position: mgl64.Vec3{2, 0, 0}, Health: 50}}
	now := time.Now()

	brain.Decide(testContext(now, players, nil), self)
	brain.Forget("e1")

	// With the stamp gone a strike is allowed immediately.
	if d := brain.Decide(testContext(now, players, nil), self); d.Kind != DecideStrike {
		t.Fatalf("decision %v after Forget, want strike", d.Kind)
	}
}
