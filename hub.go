package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"duskhollow/server/internal/ai"
	"duskhollow/server/internal/auth"
	"duskhollow/server/internal/net/proto"
	"duskhollow/server/internal/storage"
	"duskhollow/server/logging"
	loggingLifecycle "duskhollow/server/logging/lifecycle"
	loggingNetwork "duskhollow/server/logging/network"
)

// Transport is the write half of a duplex link. *websocket.Conn satisfies
// it; tests substitute fakes.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Conn is one live transport-level link, independent of login state.
type Conn struct {
	ID        string
	transport Transport
	writeMu   sync.Mutex
	limiter   *rate.Limiter

	mu       sync.Mutex
	playerID string
	lastSeen time.Time
	lastPos  mgl64.Vec3
}

// PlayerID returns the bound identity, empty before authentication.
func (c *Conn) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Conn) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

// HandlerFunc processes one decoded envelope for a connection.
type HandlerFunc func(c *Conn, data json.RawMessage)

// HubConfig collects the collaborators and tuning the hub needs.
type HubConfig struct {
	Logger        *log.Logger
	Publisher     logging.Publisher
	Store         storage.PlayerStore
	Verifier      auth.CredentialVerifier
	Brain         ai.Brain
	RarityWeights RarityWeights
	TokenSecret   []byte
	TokenTTL      time.Duration
	Seed          int64
}

// Hub owns the connection registry, the dispatch router and the broadcast
// primitives. All live world state hangs off its World.
type Hub struct {
	mu       sync.Mutex
	conns    map[string]*Conn
	byPlayer map[string]*Conn

	handlers map[string]HandlerFunc

	world     *World
	store     storage.PlayerStore
	gateway   *SessionGateway
	brain     ai.Brain
	weights   RarityWeights
	publisher logging.Publisher
	logger    *log.Logger

	tick atomic.Uint64
}

// NewHub wires the hub, its world, and the session gateway, and registers
// every message handler.
func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	store := cfg.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	brain := cfg.Brain
	if brain == nil {
		brain = ai.NewChaseBrain()
	}
	weights := cfg.RarityWeights
	if weights == (RarityWeights{}) {
		weights = DefaultRarityWeights()
	}

	h := &Hub{
		conns:     make(map[string]*Conn),
		byPlayer:  make(map[string]*Conn),
		handlers:  make(map[string]HandlerFunc),
		world:     newWorld(cfg.Seed),
		store:     store,
		brain:     brain,
		weights:   weights,
		publisher: publisher,
		logger:    logger,
	}
	h.gateway = newSessionGateway(h, store, cfg.Verifier, cfg.TokenSecret, cfg.TokenTTL)

	h.handlers[proto.TypeHandshake] = h.gateway.handleHandshake
	h.handlers[proto.TypeLogin] = h.gateway.handleLogin
	h.handlers[proto.TypeSessionValidation] = h.gateway.handleSessionValidation
	h.handlers[proto.TypeLogout] = h.gateway.handleLogout
	h.handlers[proto.TypePlayerMovement] = h.handleMovement
	h.handlers[proto.TypeCombatAction] = h.handleCombatAction
	h.handlers[proto.TypeLootPickupRequest] = h.handleLootPickup
	h.handlers[proto.TypeLevelContinue] = h.handleLevelContinue
	h.handlers[proto.TypeHeartbeat] = h.handleHeartbeat
	h.handlers[proto.TypeExperienceGain] = h.handleExperienceGain
	h.handlers[proto.TypeHealthChange] = h.handleHealthChange
	h.handlers[proto.TypeAdminResetStats] = h.handleAdminResetStats

	spawned := h.world.spawnDefaultEnemies(h.world.wave.hills())
	if len(spawned) > 0 {
		logger.Printf("placed %d default enemies", len(spawned))
	}
	return h
}

// World exposes the live tables to in-process collaborators.
func (h *Hub) World() *World { return h.world }

// Register creates a credentialed account through the session gateway.
func (h *Hub) Register(ctx context.Context, username, password, name string) (storage.PlayerRecord, error) {
	return h.gateway.Register(ctx, username, password, name)
}

// DiagnosticsSnapshot is the health endpoint's view of the hub.
type DiagnosticsSnapshot struct {
	Connections  int    `json:"connections"`
	Players      int    `json:"players"`
	AliveEnemies int    `json:"aliveEnemies"`
	Level        int    `json:"level"`
	Phase        string `json:"phase"`
	Tick         uint64 `json:"tick"`
}

func (h *Hub) Diagnostics() DiagnosticsSnapshot {
	h.mu.Lock()
	connections := len(h.conns)
	players := len(h.byPlayer)
	h.mu.Unlock()
	return DiagnosticsSnapshot{
		Connections:  connections,
		Players:      players,
		AliveEnemies: h.world.aliveEnemyCount(),
		Level:        h.world.wave.currentLevel(),
		Phase:        h.world.wave.currentPhase().String(),
		Tick:         h.Tick(),
	}
}

// Tick is the current broadcast tick, used to stamp structured events.
func (h *Hub) Tick() uint64 { return h.tick.Load() }

// OnConnect registers a new transport link and returns its connection.
func (h *Hub) OnConnect(transport Transport) *Conn {
	c := &Conn{
		ID:        "conn-" + uuid.NewString(),
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(inboundMessagesPerSecond), inboundBurst),
		lastSeen:  time.Now(),
	}
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	loggingNetwork.ConnectionOpened(context.Background(), h.publisher, h.Tick(), c.ID)
	return c
}

// OnMessage decodes one envelope and routes it. A malformed message or a
// panicking handler is logged and dropped; the receive loop continues.
func (h *Hub) OnMessage(c *Conn, raw []byte) {
	if c == nil {
		return
	}
	now := time.Now()
	c.touch(now)

	if !c.limiter.Allow() {
		h.logger.Printf("throttling %s: inbound message rate exceeded", c.ID)
		loggingNetwork.MessageDropped(context.Background(), h.publisher, h.Tick(), c.ID,
			loggingNetwork.MessageDroppedPayload{Reason: "rate_limited"})
		return
	}

	env, err := proto.Decode(raw)
	if err != nil {
		h.logger.Printf("discarding malformed message from %s: %v", c.ID, err)
		loggingNetwork.MessageDropped(context.Background(), h.publisher, h.Tick(), c.ID,
			loggingNetwork.MessageDroppedPayload{Reason: "malformed"})
		return
	}

	handler, ok := h.handlers[env.Type]
	if !ok {
		h.logger.Printf("unknown message type %q from %s", env.Type, c.ID)
		loggingNetwork.MessageDropped(context.Background(), h.publisher, h.Tick(), c.ID,
			loggingNetwork.MessageDroppedPayload{MessageType: env.Type, Reason: "unknown_type"})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Printf("handler %s panicked for %s: %v", env.Type, c.ID, r)
			h.notify(c, "error", "internal error")
		}
	}()
	handler(c, env.Data)
}

// OnDisconnect removes the connection and, when a player was bound, retires
// their live state and tells everyone else.
func (h *Hub) OnDisconnect(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	var playerID string
	if ok {
		c.mu.Lock()
		playerID = c.playerID
		c.mu.Unlock()
		if playerID != "" && h.byPlayer[playerID] == c {
			delete(h.byPlayer, playerID)
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	c.transport.Close()
	loggingNetwork.ConnectionClosed(context.Background(), h.publisher, h.Tick(), connID)

	if playerID == "" {
		return
	}
	state, removed := h.world.RemovePlayer(playerID)
	if !removed {
		return
	}
	state.mu.Lock()
	state.online = false
	name := state.name
	state.mu.Unlock()

	h.persistPlayer(state)
	h.BroadcastExcept(connID, proto.TypePlayerLeft, playerLeftMessage{PlayerID: playerID, Name: name})
	loggingLifecycle.PlayerLeft(context.Background(), h.publisher, h.Tick(), logging.PlayerRef(playerID))
}

// bindPlayer maps the connection to a durable identity. An older connection
// for the same player is kicked first.
func (h *Hub) bindPlayer(c *Conn, playerID string) {
	h.mu.Lock()
	previous, hadPrevious := h.byPlayer[playerID]
	h.byPlayer[playerID] = c
	h.mu.Unlock()

	c.mu.Lock()
	c.playerID = playerID
	c.mu.Unlock()

	if hadPrevious && previous != c {
		h.logger.Printf("kicking stale connection %s for player %s", previous.ID, playerID)
		previous.transport.Close()
	}
}

func (h *Hub) connByPlayer(playerID string) (*Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.byPlayer[playerID]
	return c, ok
}

func (h *Hub) connSnapshot() []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

// send writes one encoded envelope to a single connection. A failure closes
// that transport; the caller's broader delivery is unaffected.
func (h *Hub) send(c *Conn, msgType string, payload any) bool {
	data, err := proto.Encode(msgType, payload)
	if err != nil {
		h.logger.Printf("failed to encode %s for %s: %v", msgType, c.ID, err)
		return true
	}
	return h.sendRaw(c, data)
}

func (h *Hub) sendRaw(c *Conn, data []byte) bool {
	c.writeMu.Lock()
	c.transport.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.transport.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		h.logger.Printf("failed to send to %s: %v", c.ID, err)
		go h.OnDisconnect(c.ID)
		return false
	}
	return true
}

// SendTo delivers to one connection by id.
func (h *Hub) SendTo(connID, msgType string, payload any) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	h.mu.Unlock()
	if !ok {
		return
	}
	h.send(c, msgType, payload)
}

// SendToPlayer resolves the connection currently mapped to the player. A
// no-op with a warning when the player is offline.
func (h *Hub) SendToPlayer(playerID, msgType string, payload any) {
	c, ok := h.connByPlayer(playerID)
	if !ok {
		h.logger.Printf("dropping %s for offline player %s", msgType, playerID)
		return
	}
	h.send(c, msgType, payload)
}

// BroadcastAll fans a message out to every connection. Sends run
// concurrently and a failure to one recipient never aborts the rest.
func (h *Hub) BroadcastAll(msgType string, payload any) {
	h.broadcast("", msgType, payload)
}

// BroadcastExcept fans out to everyone but the named connection.
func (h *Hub) BroadcastExcept(exceptConnID, msgType string, payload any) {
	h.broadcast(exceptConnID, msgType, payload)
}

func (h *Hub) broadcast(exceptConnID, msgType string, payload any) {
	data, err := proto.Encode(msgType, payload)
	if err != nil {
		h.logger.Printf("failed to encode broadcast %s: %v", msgType, err)
		return
	}
	var wg sync.WaitGroup
	for _, c := range h.connSnapshot() {
		if c.ID == exceptConnID {
			continue
		}
		wg.Add(1)
		go func(c *Conn) {
			defer wg.Done()
			h.sendRaw(c, data)
		}(c)
	}
	wg.Wait()
}

// notify sends a chat-style SystemNotification to one connection.
func (h *Hub) notify(c *Conn, severity, message string) {
	h.send(c, proto.TypeSystemNotification, systemNotification{Severity: severity, Message: message})
}

// persistPlayer writes the live state through to storage. Persistence
// failures are logged and the in-memory state stays authoritative.
func (h *Hub) persistPlayer(state *playerState) {
	go func() {
		ctx := context.Background()
		base, err := h.store.Get(ctx, state.id)
		if err != nil {
			h.logger.Printf("skipping persist for %s: %v", state.id, err)
			return
		}
		if err := h.store.Update(ctx, state.record(base)); err != nil {
			h.logger.Printf("failed to persist player %s: %v", state.id, err)
		}
	}()
}

// RunWorldBroadcast drives the fixed-rate world snapshot push and prunes
// connections that stopped heartbeating.
func (h *Hub) RunWorldBroadcast(ctx context.Context) error {
	ticker := time.NewTicker(worldBroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			h.tick.Add(1)
			h.pruneStale(now)
			players := h.world.playerSnapshots()
			if len(players) == 0 {
				continue
			}
			h.BroadcastAll(proto.TypeWorldUpdate, worldSnapshot{
				Players:    players,
				Enemies:    h.world.enemySnapshots(),
				Loot:       h.world.lootSnapshots(),
				Level:      h.world.wave.currentLevel(),
				ServerTime: now.UnixMilli(),
			})
		}
	}
}

func (h *Hub) pruneStale(now time.Time) {
	for _, c := range h.connSnapshot() {
		c.mu.Lock()
		stale := now.Sub(c.lastSeen) > disconnectAfter
		c.mu.Unlock()
		if stale {
			h.logger.Printf("disconnecting %s due to heartbeat timeout", c.ID)
			h.OnDisconnect(c.ID)
		}
	}
}

// handleHeartbeat refreshes liveness and echoes timing data back.
func (h *Hub) handleHeartbeat(c *Conn, data json.RawMessage) {
	var msg proto.HeartbeatPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Printf("discarding malformed heartbeat from %s: %v", c.ID, err)
			return
		}
	}
	now := time.Now()
	c.touch(now)

	var rtt time.Duration
	if msg.SentAt > 0 {
		clientTime := time.UnixMilli(msg.SentAt)
		if clientTime.Before(now.Add(5 * time.Second)) {
			rtt = now.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
		}
	}
	h.send(c, proto.TypeHeartbeat, heartbeatAck{
		ServerTime: now.UnixMilli(),
		ClientTime: msg.SentAt,
		RTTMillis:  rtt.Milliseconds(),
	})
}

// handleMovement applies a position update from an authenticated, living
// player and remembers the position on the connection for AI context.
func (h *Hub) handleMovement(c *Conn, data json.RawMessage) {
	var msg proto.MovementPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Printf("discarding malformed movement from %s: %v", c.ID, err)
		return
	}

	c.mu.Lock()
	c.lastPos = vec3(msg.X, msg.Y, msg.Z)
	playerID := c.playerID
	c.mu.Unlock()

	if playerID == "" {
		h.notify(c, "warning", "not authenticated")
		return
	}
	state, ok := h.world.Player(playerID)
	if !ok {
		h.logger.Printf("movement ignored for unknown player %s", playerID)
		return
	}

	state.mu.Lock()
	if state.health <= 0 {
		state.mu.Unlock()
		h.notify(c, "warning", "you are dead")
		return
	}
	state.position = vec3(msg.X, msg.Y, msg.Z)
	state.velocity = vec3(msg.VelocityX, msg.VelocityY, msg.VelocityZ)
	state.rotation = msg.Rotation
	state.lastUpdate = time.Now()
	state.mu.Unlock()

	go func() {
		if err := h.store.SetPosition(context.Background(), playerID, msg.X, msg.Y, msg.Z); err != nil {
			h.logger.Printf("failed to persist position for %s: %v", playerID, err)
		}
	}()
}
