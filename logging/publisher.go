package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindPlayer  EntityKind = "player"
	EntityKindEnemy   EntityKind = "enemy"
	EntityKindLoot    EntityKind = "loot"
	EntityKindWorld   EntityKind = "world"
)

// Event is the structured record published for every notable gameplay or
// system occurrence. Tick is the wave-engine tick at publish time.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

const (
	CategoryCombat  = "combat"
	CategoryEconomy = "economy"
	CategoryWave    = "wave"
	CategoryAuth    = "auth"
	CategoryNetwork = "network"
	CategorySystem  = "system"
)

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

// NopPublisher drops every event. Tests that don't assert on events use it.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

func PlayerRef(id string) EntityRef { return EntityRef{ID: id, Kind: EntityKindPlayer} }
func EnemyRef(id string) EntityRef  { return EntityRef{ID: id, Kind: EntityKindEnemy} }
func LootRef(id string) EntityRef   { return EntityRef{ID: id, Kind: EntityKindLoot} }
func WorldRef() EntityRef           { return EntityRef{ID: "world", Kind: EntityKindWorld} }
