package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"duskhollow/server/internal/net/proto"
	"duskhollow/server/internal/terrain"
	"duskhollow/server/logging"
	loggingLifecycle "duskhollow/server/logging/lifecycle"
)

// WavePhase is the lifecycle position of the current level.
type WavePhase int

const (
	// WaveInProgress means spawned enemies remain alive.
	WaveInProgress WavePhase = iota
	// WaveComplete means the wave is cleared and the machine waits for a
	// continue request (or the auto-advance timer).
	WaveComplete
	// WaveTransitioning covers the pause between cleanup and the next spawn.
	WaveTransitioning
)

func (p WavePhase) String() string {
	switch p {
	case WaveInProgress:
		return "in_progress"
	case WaveComplete:
		return "complete"
	case WaveTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// LevelStats accumulates per-level progress for the completion summary.
type LevelStats struct {
	Kills       int
	Experience  int
	DamageDealt float64
	StartedAt   time.Time
}

// waveMachine owns the level counter and phase. It has its own mutex so
// phase decisions never contend with entity locks, and the first goroutine
// to observe the last kill wins the completion transition.
type waveMachine struct {
	mu    sync.Mutex
	phase WavePhase
	level int
	stats LevelStats
}

func newWaveMachine() *waveMachine {
	return &waveMachine{
		phase: WaveInProgress,
		level: 1,
		stats: LevelStats{StartedAt: time.Now()},
	}
}

func (m *waveMachine) currentLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *waveMachine) currentPhase() WavePhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// hills resolves the terrain preset for the current level.
func (m *waveMachine) hills() terrain.HillSet {
	return terrain.ForLevel(m.currentLevel())
}

func (m *waveMachine) recordKill(experience int) {
	m.mu.Lock()
	m.stats.Kills++
	m.stats.Experience += experience
	m.mu.Unlock()
}

func (m *waveMachine) recordDamage(amount float64) {
	m.mu.Lock()
	m.stats.DamageDealt += amount
	m.mu.Unlock()
}

// tryComplete flips InProgress to Complete exactly once and returns the
// frozen stats. A second caller sees Complete and gets ok=false.
func (m *waveMachine) tryComplete() (LevelStats, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != WaveInProgress {
		return LevelStats{}, m.level, false
	}
	m.phase = WaveComplete
	return m.stats, m.level, true
}

// tryBeginTransition flips Complete to Transitioning exactly once. A repeat
// continue request during the pause is a no-op.
func (m *waveMachine) tryBeginTransition() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != WaveComplete {
		return m.level, false
	}
	m.phase = WaveTransitioning
	return m.level, true
}

// startNextLevel advances the counter, resets stats, and reopens the wave.
func (m *waveMachine) startNextLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level++
	m.phase = WaveInProgress
	m.stats = LevelStats{StartedAt: time.Now()}
	return m.level
}

// checkCompletion runs after every enemy death. Only the call that observes
// zero alive enemies while the wave is open performs the completion.
func (m *waveMachine) checkCompletion(h *Hub) {
	if m.currentPhase() != WaveInProgress {
		return
	}
	if h.world.aliveEnemyCount() > 0 {
		return
	}
	stats, level, won := m.tryComplete()
	if !won {
		return
	}

	duration := time.Since(stats.StartedAt)
	h.logger.Printf("level %d complete: %d kills, %d xp, %.0f damage in %s",
		level, stats.Kills, stats.Experience, stats.DamageDealt, duration.Round(time.Second))
	loggingLifecycle.WaveCompleted(context.Background(), h.publisher, h.Tick(),
		loggingLifecycle.WaveCompletedPayload{
			Level:       level,
			Kills:       stats.Kills,
			Experience:  stats.Experience,
			DamageDealt: stats.DamageDealt,
			DurationMS:  duration.Milliseconds(),
		})
	h.BroadcastAll(proto.TypeLevelComplete, levelCompleteMessage{
		Level:       level,
		Kills:       stats.Kills,
		Experience:  stats.Experience,
		DamageDealt: stats.DamageDealt,
		DurationMS:  duration.Milliseconds(),
	})
}

// handleLevelContinue advances to the next level when the wave is complete.
// The first request wins; duplicates arriving during the pause are ignored.
func (h *Hub) handleLevelContinue(c *Conn, _ json.RawMessage) {
	if c.PlayerID() == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	completedLevel, ok := h.world.wave.tryBeginTransition()
	if !ok {
		h.notify(c, "info", "level is not complete")
		return
	}
	go h.runLevelTransition(completedLevel)
}

// runLevelTransition performs the cleanup, pause, terrain swap and spawn for
// the next level. It runs on its own goroutine so the requesting connection's
// read loop is never blocked by the pause.
func (h *Hub) runLevelTransition(completedLevel int) {
	h.logger.Printf("level %d cleared, starting transition", completedLevel)
	removedEnemies, clearedLoot := h.world.cleanupWave()
	for _, enemyID := range removedEnemies {
		h.brain.Forget(enemyID)
	}
	for _, lootID := range clearedLoot {
		h.BroadcastAll(proto.TypeLootExpire, lootExpireMessage{LootID: lootID})
	}

	restored := h.world.restorePlayers()
	for _, player := range restored {
		h.SendToPlayer(player.ID, proto.TypePlayerStatsUpdate, playerStatsUpdate{Player: player})
	}

	time.Sleep(waveTransitionPause)

	nextLevel := h.world.wave.startNextLevel()
	hills := terrain.ForLevel(nextLevel)
	spawnPoint := hills.PlaceOnGround(0, 0)
	h.BroadcastAll(proto.TypeTerrainChange, terrainChangeMessage{
		Level:      nextLevel,
		Name:       hills.Name,
		Reposition: true,
		SpawnX:     spawnPoint.X(),
		SpawnY:     spawnPoint.Y(),
		SpawnZ:     spawnPoint.Z(),
	})

	spawned := h.world.spawnWave(nextLevel, hills)
	h.BroadcastAll(proto.TypeEnemySpawn, enemySpawnMessage{Enemies: spawned})
	h.logger.Printf("level %d started with %d enemies", nextLevel, len(spawned))
	loggingLifecycle.LevelStarted(context.Background(), h.publisher, h.Tick(),
		loggingLifecycle.LevelStartedPayload{
			Level:      nextLevel,
			EnemyCount: len(spawned),
			Elite:      nextLevel%eliteLevelInterval == 0,
		})
	for _, enemy := range spawned {
		loggingLifecycle.EnemySpawned(context.Background(), h.publisher, h.Tick(),
			logging.EnemyRef(enemy.ID), nextLevel)
	}
}

// RunRegen drives enemy out-of-combat regeneration and default-spawn
// respawns. Only enemies whose health actually changed are rebroadcast.
func (h *Hub) RunRegen(ctx context.Context) error {
	ticker := time.NewTicker(regenTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			changed := h.regenTick(now)
			if len(changed) > 0 {
				h.BroadcastAll(proto.TypeEnemyUpdate, enemyUpdateMessage{Enemies: changed})
			}
		}
	}
}

func (h *Hub) regenTick(now time.Time) []Enemy {
	h.world.mu.Lock()
	states := make([]*enemyState, 0, len(h.world.enemies))
	for _, state := range h.world.enemies {
		states = append(states, state)
	}
	h.world.mu.Unlock()

	var changed []Enemy
	var respawned []Enemy
	for _, enemy := range states {
		enemy.mu.Lock()
		switch {
		case enemy.alive && enemy.health < enemy.maxHealth:
			enemy.health += enemyRegenPerTick
			if enemy.health > enemy.maxHealth {
				enemy.health = enemy.maxHealth
			}
			changed = append(changed, enemy.snapshotLocked())
		case !enemy.alive && enemy.defaultSpawn && !enemy.respawnAt.IsZero() && now.After(enemy.respawnAt):
			enemy.health = enemy.maxHealth
			enemy.alive = true
			enemy.respawnAt = time.Time{}
			respawned = append(respawned, enemy.snapshotLocked())
		}
		enemy.mu.Unlock()
	}
	if len(respawned) > 0 {
		h.BroadcastAll(proto.TypeEnemySpawn, enemySpawnMessage{Enemies: respawned})
	}
	return changed
}
