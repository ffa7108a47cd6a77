package lifecycle

import (
	"context"

	"duskhollow/server/logging"
)

const (
	// EventPlayerJoined is emitted once a session converges after auth.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player's connection closes.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventWaveCompleted is emitted exactly once per cleared wave.
	EventWaveCompleted logging.EventType = "lifecycle.wave_completed"
	// EventLevelStarted is emitted when a fresh wave spawns.
	EventLevelStarted logging.EventType = "lifecycle.level_started"
	// EventEnemySpawned is emitted per spawned enemy.
	EventEnemySpawned logging.EventType = "lifecycle.enemy_spawned"
)

type WaveCompletedPayload struct {
	Level       int     `json:"level"`
	Kills       int     `json:"kills"`
	Experience  int     `json:"experience"`
	DamageDealt float64 `json:"damageDealt"`
	DurationMS  int64   `json:"durationMs"`
}

type LevelStartedPayload struct {
	Level      int  `json:"level"`
	EnemyCount int  `json:"enemyCount"`
	Elite      bool `json:"elite"`
}

func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    player,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, player logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerLeft,
		Tick:     tick,
		Actor:    player,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

func WaveCompleted(ctx context.Context, pub logging.Publisher, tick uint64, payload WaveCompletedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWaveCompleted,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWave,
		Payload:  payload,
	})
}

func LevelStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload LevelStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLevelStarted,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWave,
		Payload:  payload,
	})
}

func EnemySpawned(ctx context.Context, pub logging.Publisher, tick uint64, enemy logging.EntityRef, level int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnemySpawned,
		Tick:     tick,
		Actor:    enemy,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryWave,
		Extra:    map[string]any{"level": level},
	})
}
