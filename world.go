package server

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"duskhollow/server/internal/terrain"
)

// World owns the live player, enemy and loot tables plus the wave machine.
// The world mutex guards table membership only; compound per-entity updates
// take the entity's own mutex so unrelated combat never serializes.
type World struct {
	mu      sync.Mutex
	players map[string]*playerState
	enemies map[string]*enemyState
	loot    map[string]*lootDropState

	wave *waveMachine

	rngMu sync.Mutex
	rng   *rand.Rand
}

func newWorld(seed int64) *World {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &World{
		players: make(map[string]*playerState),
		enemies: make(map[string]*enemyState),
		loot:    make(map[string]*lootDropState),
		wave:    newWaveMachine(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (w *World) randFloat() float64 {
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	return w.rng.Float64()
}

func (w *World) randIntn(n int) int {
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	return w.rng.Intn(n)
}

// AddPlayer inserts a fully populated state. The caller must have attached
// equipment bonuses already; inserting first and patching later would let
// combat math read zero bonuses.
func (w *World) AddPlayer(state *playerState) {
	w.mu.Lock()
	w.players[state.id] = state
	w.mu.Unlock()
}

func (w *World) RemovePlayer(playerID string) (*playerState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.players[playerID]
	if ok {
		delete(w.players, playerID)
	}
	return state, ok
}

func (w *World) Player(playerID string) (*playerState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.players[playerID]
	return state, ok
}

func (w *World) Enemy(enemyID string) (*enemyState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.enemies[enemyID]
	return state, ok
}

func (w *World) addEnemy(state *enemyState) {
	w.mu.Lock()
	w.enemies[state.id] = state
	w.mu.Unlock()
}

// aliveEnemyCount reports how many enemies still stand. The wave machine
// uses it to detect completion.
func (w *World) aliveEnemyCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	count := 0
	for _, enemy := range w.enemies {
		enemy.mu.Lock()
		if enemy.alive {
			count++
		}
		enemy.mu.Unlock()
	}
	return count
}

func (w *World) playerSnapshots() []Player {
	w.mu.Lock()
	states := make([]*playerState, 0, len(w.players))
	for _, state := range w.players {
		states = append(states, state)
	}
	w.mu.Unlock()

	players := make([]Player, 0, len(states))
	for _, state := range states {
		players = append(players, state.snapshot())
	}
	return players
}

func (w *World) enemySnapshots() []Enemy {
	w.mu.Lock()
	states := make([]*enemyState, 0, len(w.enemies))
	for _, state := range w.enemies {
		states = append(states, state)
	}
	w.mu.Unlock()

	enemies := make([]Enemy, 0, len(states))
	for _, state := range states {
		enemies = append(enemies, state.snapshot())
	}
	return enemies
}

func (w *World) lootSnapshots() []LootDrop {
	w.mu.Lock()
	defer w.mu.Unlock()
	drops := make([]LootDrop, 0, len(w.loot))
	for _, state := range w.loot {
		drops = append(drops, state.LootDrop)
	}
	return drops
}

// defaultEnemySpawns are the hand-placed enemies present before any wave
// spawns. They respawn on a timer instead of being swept.
var defaultEnemySpawns = []struct {
	enemyType string
	x, z      float64
}{
	{"grave_hound", -30, -30},
	{"grave_hound", 30, -30},
	{"bone_sentry", 0, 45},
}

func (w *World) spawnDefaultEnemies(hills terrain.HillSet) []Enemy {
	spawned := make([]Enemy, 0, len(defaultEnemySpawns))
	for _, spawn := range defaultEnemySpawns {
		position := hills.PlaceOnGround(spawn.x, spawn.z)
		state := &enemyState{
			id:           "enemy-" + uuid.NewString(),
			enemyType:    spawn.enemyType,
			position:     position,
			health:       enemyBaseHealth,
			maxHealth:    enemyBaseHealth,
			level:        1,
			damage:       enemyBaseDamage,
			alive:        true,
			defaultSpawn: true,
			lastUpdate:   time.Now(),
		}
		w.addEnemy(state)
		spawned = append(spawned, state.snapshot())
	}
	return spawned
}

// spawnWave creates the enemy batch for a level. Count and strength scale
// linearly; every third level's enemies carry the elite tag.
func (w *World) spawnWave(level int, hills terrain.HillSet) []Enemy {
	count := waveBaseEnemyCount + waveEnemiesPerLevel*level
	elite := level%eliteLevelInterval == 0
	health := enemyBaseHealth + enemyHealthPerLevel*float64(level)
	damage := enemyBaseDamage + enemyDamagePerLevel*float64(level)

	spawned := make([]Enemy, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		radius := 60.0 + w.randFloat()*30
		position := hills.PlaceOnGround(radius*math.Cos(angle), radius*math.Sin(angle))
		enemyType := "husk"
		if elite {
			enemyType = "elite_husk"
		}
		state := &enemyState{
			id:         "enemy-" + uuid.NewString(),
			enemyType:  enemyType,
			position:   position,
			health:     health,
			maxHealth:  health,
			level:      level,
			damage:     damage,
			elite:      elite,
			alive:      true,
			lastUpdate: time.Now(),
		}
		w.addEnemy(state)
		spawned = append(spawned, state.snapshot())
	}
	return spawned
}

// cleanupWave purges dead enemies (keeping the hand-placed respawners) and
// clears every uncollected drop. Returns the ids removed so callers can drop
// AI state and announce evictions.
func (w *World) cleanupWave() (removedEnemies []string, clearedLoot []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, enemy := range w.enemies {
		enemy.mu.Lock()
		sweep := !enemy.defaultSpawn
		enemy.mu.Unlock()
		if sweep {
			delete(w.enemies, id)
			removedEnemies = append(removedEnemies, id)
		}
	}
	for id := range w.loot {
		delete(w.loot, id)
		clearedLoot = append(clearedLoot, id)
	}
	return removedEnemies, clearedLoot
}

// restorePlayers heals everyone to full during a wave transition and returns
// the refreshed snapshots.
func (w *World) restorePlayers() []Player {
	w.mu.Lock()
	states := make([]*playerState, 0, len(w.players))
	for _, state := range w.players {
		states = append(states, state)
	}
	w.mu.Unlock()

	players := make([]Player, 0, len(states))
	for _, state := range states {
		state.mu.Lock()
		state.health = state.maxHealth
		players = append(players, state.snapshotLocked())
		state.mu.Unlock()
	}
	return players
}

func vec3(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }
