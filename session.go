package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"duskhollow/server/internal/auth"
	"duskhollow/server/internal/net/proto"
	"duskhollow/server/internal/storage"
	"duskhollow/server/logging"
	loggingLifecycle "duskhollow/server/logging/lifecycle"
	loggingNetwork "duskhollow/server/logging/network"
)

// SessionGateway owns the three authentication paths (handshake, credential
// login, token reconnection) and the shared convergence that turns a durable
// record into a live player. Equipment bonuses are resolved before the state
// enters the world so combat math never reads a half-built entry.
type SessionGateway struct {
	hub       *Hub
	store     storage.PlayerStore
	verifier  auth.CredentialVerifier
	tokens    *auth.TokenIssuer
	lockouts  *auth.LockoutTracker
	equipment EquipmentCalculator
}

func newSessionGateway(hub *Hub, store storage.PlayerStore, verifier auth.CredentialVerifier, tokenSecret []byte, tokenTTL time.Duration) *SessionGateway {
	if verifier == nil {
		verifier = &auth.BcryptVerifier{Store: store}
	}
	if len(tokenSecret) == 0 {
		// An ephemeral secret still works; tokens just do not survive a
		// server restart.
		tokenSecret = []byte(uuid.NewString())
	}
	return &SessionGateway{
		hub:       hub,
		store:     store,
		verifier:  verifier,
		tokens:    auth.NewTokenIssuer(tokenSecret, tokenTTL),
		lockouts:  auth.NewLockoutTracker(auth.DefaultMaxFailures, auth.DefaultLockoutWindow),
		equipment: CatalogCalculator{},
	}
}

// handleHandshake is the trusted-client path: the client claims an identity
// and the server creates the record on first sight. No password is involved,
// so no session token is minted either.
func (g *SessionGateway) handleHandshake(c *Conn, data json.RawMessage) {
	var msg proto.HandshakePayload
	if err := json.Unmarshal(data, &msg); err != nil {
		g.hub.logger.Printf("discarding malformed handshake from %s: %v", c.ID, err)
		return
	}
	if msg.PlayerID == "" {
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{
			Success: false, Message: "missing player id",
		})
		return
	}

	ctx := context.Background()
	record, err := g.store.Get(ctx, msg.PlayerID)
	if errors.Is(err, storage.ErrNotFound) {
		record = newDefaultRecord(msg.PlayerID, msg.Name)
		if createErr := g.store.Create(ctx, record); createErr != nil {
			// Lost a create race; the record exists now.
			record, err = g.store.Get(ctx, msg.PlayerID)
		} else {
			err = nil
		}
	}
	if err != nil {
		g.hub.logger.Printf("handshake lookup failed for %s: %v", msg.PlayerID, err)
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{
			Success: false, Message: "internal error",
		})
		return
	}

	g.completeLogin(c, record, "")
}

// handleLogin is the credential path. Failures count toward the account
// lockout; a success mints a fresh session token, revoking any previous one.
func (g *SessionGateway) handleLogin(c *Conn, data json.RawMessage) {
	var msg proto.LoginPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		g.hub.logger.Printf("discarding malformed login from %s: %v", c.ID, err)
		return
	}
	username := strings.TrimSpace(msg.Username)

	if locked, remaining := g.lockouts.Locked(username); locked {
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{
			Success: false,
			Message: fmt.Sprintf("account locked, try again in %d seconds", int(remaining.Seconds())+1),
		})
		loggingNetwork.AuthFailed(context.Background(), g.hub.publisher, g.hub.Tick(), c.ID,
			loggingNetwork.AuthFailedPayload{Username: username, Reason: "locked", Locked: true})
		return
	}

	ctx := context.Background()
	record, err := g.verifier.Verify(ctx, username, msg.Password)
	if err != nil {
		message := "invalid username or password"
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			g.hub.logger.Printf("login verification failed for %q: %v", username, err)
			message = "internal error"
		}
		locked := g.lockouts.Fail(username)
		if locked {
			message = "too many failed attempts, account locked"
		}
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{Success: false, Message: message})
		loggingNetwork.AuthFailed(ctx, g.hub.publisher, g.hub.Tick(), c.ID,
			loggingNetwork.AuthFailedPayload{Username: username, Reason: "bad_credentials", Locked: locked})
		return
	}
	g.lockouts.Clear(username)

	token, expiry, err := g.tokens.Issue(record.ID)
	if err != nil {
		g.hub.logger.Printf("failed to issue token for %s: %v", record.ID, err)
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{Success: false, Message: "internal error"})
		return
	}
	if err := g.store.SetSessionToken(ctx, record.ID, token, expiry); err != nil {
		g.hub.logger.Printf("failed to store token for %s: %v", record.ID, err)
		g.hub.send(c, proto.TypeLoginResponse, loginResponse{Success: false, Message: "internal error"})
		return
	}

	g.completeLogin(c, record, token)
}

// handleSessionValidation is the reconnection path. The token must both
// verify cryptographically and match the one stored on the record, so a
// newer login invalidates older tokens.
func (g *SessionGateway) handleSessionValidation(c *Conn, data json.RawMessage) {
	var msg proto.SessionValidationPayload
	if err := json.Unmarshal(data, &msg); err != nil {
		g.hub.logger.Printf("discarding malformed session validation from %s: %v", c.ID, err)
		return
	}

	ctx := context.Background()
	reject := func(reason string) {
		g.hub.send(c, proto.TypeAuthenticationResponse, authenticationResponse{
			Success: false, Message: "session invalid, log in again",
		})
		loggingNetwork.AuthFailed(ctx, g.hub.publisher, g.hub.Tick(), c.ID,
			loggingNetwork.AuthFailedPayload{Reason: reason})
	}

	playerID, err := g.tokens.Validate(msg.Token)
	if err != nil {
		reject("token_invalid")
		return
	}
	// The durable record is found by stored token, so a newer login leaves
	// older tokens pointing at nothing.
	record, err := g.store.FindByToken(ctx, msg.Token)
	if err != nil {
		reject("token_superseded")
		return
	}
	if record.ID != playerID {
		reject("token_mismatch")
		return
	}
	if !record.TokenExpiry.IsZero() && time.Now().After(record.TokenExpiry) {
		g.store.ClearSessionToken(ctx, playerID)
		reject("token_expired")
		return
	}

	g.hub.send(c, proto.TypeAuthenticationResponse, authenticationResponse{Success: true})
	g.completeLogin(c, record, msg.Token)
}

// handleLogout tears the session down deliberately: the stored token is
// cleared so it cannot be replayed, then the connection goes through the
// normal disconnect path.
func (g *SessionGateway) handleLogout(c *Conn, _ json.RawMessage) {
	playerID := c.PlayerID()
	if playerID != "" {
		if err := g.store.ClearSessionToken(context.Background(), playerID); err != nil {
			g.hub.logger.Printf("failed to clear token for %s: %v", playerID, err)
		}
	}
	g.hub.OnDisconnect(c.ID)
}

// completeLogin is the shared convergence for all three auth paths: resolve
// equipment bonuses, place the player on the terrain, insert the live state,
// bind the connection, then announce and sync.
func (g *SessionGateway) completeLogin(c *Conn, record storage.PlayerRecord, token string) {
	ctx := context.Background()

	bonus, err := g.equipment.BonusesFor(ctx, record)
	if err != nil {
		g.hub.logger.Printf("equipment resolution failed for %s: %v", record.ID, err)
		bonus = EquipmentBonus{}
	}

	hills := g.hub.world.wave.hills()
	position := hills.PlaceOnGround(record.X, record.Z)

	state := newPlayerState(record, bonus, position)
	g.hub.world.AddPlayer(state)
	g.hub.bindPlayer(c, record.ID)

	snap := state.snapshot()
	response := loginResponse{
		Success:  true,
		PlayerID: record.ID,
		Player:   snap,
	}
	if token != "" {
		response.Token = token
		response.TokenExpiry = record.TokenExpiry.UnixMilli()
	}
	g.hub.send(c, proto.TypeLoginResponse, response)

	g.hub.BroadcastExcept(c.ID, proto.TypePlayerJoined, playerJoinedMessage{Player: snap})

	// The joining client gets the full picture in one push.
	g.hub.send(c, proto.TypeWorldUpdate, worldSnapshot{
		Players:    g.hub.world.playerSnapshots(),
		Enemies:    g.hub.world.enemySnapshots(),
		Loot:       g.hub.world.lootSnapshots(),
		Level:      g.hub.world.wave.currentLevel(),
		ServerTime: time.Now().UnixMilli(),
	})

	g.hub.logger.Printf("player %s (%s) joined", record.ID, record.Name)
	loggingLifecycle.PlayerJoined(ctx, g.hub.publisher, g.hub.Tick(), logging.PlayerRef(record.ID))
}

// Register creates a credentialed account. Exposed for the account creation
// endpoint and tests; gameplay paths never call it.
func (g *SessionGateway) Register(ctx context.Context, username, password, name string) (storage.PlayerRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return storage.PlayerRecord{}, auth.ErrInvalidCredentials
	}
	digest, err := auth.HashPassword(password)
	if err != nil {
		return storage.PlayerRecord{}, err
	}
	if name == "" {
		name = username
	}
	record := newDefaultRecord("player-"+uuid.NewString(), name)
	record.Username = username
	record.PasswordHash = digest
	if err := g.store.Create(ctx, record); err != nil {
		return storage.PlayerRecord{}, err
	}
	return record, nil
}

// newDefaultRecord seeds a fresh durable record with starting stats.
func newDefaultRecord(playerID, name string) storage.PlayerRecord {
	if name == "" {
		name = playerID
	}
	now := time.Now()
	return storage.PlayerRecord{
		ID:        playerID,
		Name:      name,
		Strength:  defaultPlayerStrength,
		Defense:   defaultPlayerDefense,
		Speed:     defaultPlayerSpeed,
		Level:     1,
		Health:    defaultPlayerMaxHealth,
		MaxHealth: defaultPlayerMaxHealth,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
