package proto

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is bumped whenever an envelope payload changes shape.
const ProtocolVersion = 1

// Message types consumed by the server.
const (
	TypeHandshake         = "Handshake"
	TypeLogin             = "Login"
	TypeSessionValidation = "SessionValidation"
	TypeLogout            = "Logout"
	TypePlayerMovement    = "PlayerMovement"
	TypeCombatAction      = "CombatAction"
	TypeLootPickupRequest = "LootPickupRequest"
	TypeLevelContinue     = "LevelContinue"
	TypeHeartbeat         = "Heartbeat"
	TypeExperienceGain    = "ExperienceGain"
	TypeHealthChange      = "HealthChange"
	TypeAdminResetStats   = "AdminResetStats"
)

// Message types produced by the server.
const (
	TypeLoginResponse          = "LoginResponse"
	TypeAuthenticationResponse = "AuthenticationResponse"
	TypePlayerStatsUpdate      = "PlayerStatsUpdate"
	TypeLevelUp                = "LevelUp"
	TypeWorldUpdate            = "WorldUpdate"
	TypePlayerJoined           = "PlayerJoined"
	TypePlayerLeft             = "PlayerLeft"
	TypePlayerAttack           = "PlayerAttack"
	TypeEnemySpawn             = "EnemySpawn"
	TypeEnemyUpdate            = "EnemyUpdate"
	TypeEnemyDamage            = "EnemyDamage"
	TypeEnemyDeath             = "EnemyDeath"
	TypeLootDrop               = "LootDrop"
	TypeLootExpire             = "LootExpire"
	TypeLootPickupResponse     = "LootPickupResponse"
	TypeLevelComplete          = "LevelComplete"
	TypeTerrainChange          = "TerrainChange"
	TypeSystemNotification     = "SystemNotification"
)

// Envelope is the wire format for every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses the outer envelope. The payload stays raw so each handler can
// unmarshal its own shape and reject malformed data without killing the loop.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope missing type")
	}
	return env, nil
}

// Encode wraps a payload in an envelope and marshals the whole message.
func Encode(msgType string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		data = encoded
	}
	return json.Marshal(Envelope{Type: msgType, Data: data})
}

// HandshakePayload is the trusted-client path carrying a claimed identity.
type HandshakePayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// LoginPayload carries credentials for the password path.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionValidationPayload struct {
	Token string `json:"token"`
}

type MovementPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	VelocityZ float64 `json:"velocityZ"`
	Rotation  float64 `json:"rotation"`
}

type CombatActionPayload struct {
	TargetID   string  `json:"targetId"`
	AttackType string  `json:"attackType"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
}

type LootPickupPayload struct {
	LootID string  `json:"lootId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

type HeartbeatPayload struct {
	SentAt int64 `json:"sentAt"`
}

type ExperienceGainPayload struct {
	Amount int `json:"amount"`
}

type HealthChangePayload struct {
	Delta float64 `json:"delta"`
}
