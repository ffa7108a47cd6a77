package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"duskhollow/server/internal/net/proto"
	"duskhollow/server/internal/storage"
	"duskhollow/server/logging"
)

// fakeTransport records every frame the hub writes to it.
type fakeTransport struct {
	mu         sync.Mutex
	frames     [][]byte
	closed     bool
	failWrites bool
}

func (t *fakeTransport) WriteMessage(_ int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWrites {
		return errors.New("write failed")
	}
	t.frames = append(t.frames, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) SetWriteDeadline(time.Time) error { return nil }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) failAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failWrites = true
}

func (t *fakeTransport) envelopes() []proto.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	envs := make([]proto.Envelope, 0, len(t.frames))
	for _, frame := range t.frames {
		env, err := proto.Decode(frame)
		if err != nil {
			continue
		}
		envs = append(envs, env)
	}
	return envs
}

func (t *fakeTransport) lastOfType(msgType string) (json.RawMessage, bool) {
	envs := t.envelopes()
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == msgType {
			return envs[i].Data, true
		}
	}
	return nil, false
}

func (t *fakeTransport) countOfType(msgType string) int {
	count := 0
	for _, env := range t.envelopes() {
		if env.Type == msgType {
			count++
		}
	}
	return count
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(HubConfig{
		Logger:      log.New(io.Discard, "", 0),
		Publisher:   logging.NopPublisher{},
		Store:       storage.NewMemoryStore(),
		TokenSecret: []byte("test-secret"),
		Seed:        1,
	})
}

// joinPlayer connects a fake transport and authenticates it through the
// handshake path.
func joinPlayer(t *testing.T, h *Hub, playerID, name string) (*Conn, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{}
	c := h.OnConnect(transport)

	payload, err := json.Marshal(proto.HandshakePayload{PlayerID: playerID, Name: name})
	if err != nil {
		t.Fatalf("failed to marshal handshake: %v", err)
	}
	h.gateway.handleHandshake(c, payload)

	data, ok := transport.lastOfType(proto.TypeLoginResponse)
	if !ok {
		t.Fatalf("no login response for %s", playerID)
	}
	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("handshake for %s failed: %s", playerID, resp.Message)
	}
	return c, transport
}

// mustPlayer fetches the live state or fails the test.
func mustPlayer(t *testing.T, h *Hub, playerID string) *playerState {
	t.Helper()
	state, ok := h.world.Player(playerID)
	if !ok {
		t.Fatalf("player %s not in world", playerID)
	}
	return state
}

// placeEnemy inserts an enemy at an exact position for combat tests.
func placeEnemy(h *Hub, id string, x, y, z, health float64, level int, elite bool) *enemyState {
	state := &enemyState{
		id:         id,
		enemyType:  "husk",
		position:   vec3(x, y, z),
		health:     health,
		maxHealth:  health,
		level:      level,
		damage:     enemyBaseDamage,
		elite:      elite,
		alive:      true,
		lastUpdate: time.Now(),
	}
	h.world.addEnemy(state)
	return state
}

func encodePayload(t *testing.T, payload any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return data
}

func encodeEnvelope(t *testing.T, msgType string, payload any) []byte {
	t.Helper()
	data, err := proto.Encode(msgType, payload)
	if err != nil {
		t.Fatalf("failed to encode envelope: %v", err)
	}
	return data
}
