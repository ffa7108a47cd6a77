package server

// Outbound payloads. Every message crosses the wire wrapped in the
// proto.Envelope; these are the type-specific data shapes.

type loginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	PlayerID    string `json:"playerId,omitempty"`
	Token       string `json:"token,omitempty"`
	TokenExpiry int64  `json:"tokenExpiry,omitempty"`
	Player      Player `json:"player,omitzero"`
}

type authenticationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type playerStatsUpdate struct {
	Player Player `json:"player"`
}

type levelUpMessage struct {
	PlayerID   string `json:"playerId"`
	Level      int    `json:"level"`
	StatPoints int    `json:"statPoints"`
}

type worldSnapshot struct {
	Players    []Player   `json:"players"`
	Enemies    []Enemy    `json:"enemies"`
	Loot       []LootDrop `json:"loot,omitempty"`
	Level      int        `json:"level"`
	ServerTime int64      `json:"serverTime"`
}

type playerJoinedMessage struct {
	Player Player `json:"player"`
}

type playerLeftMessage struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type playerAttackMessage struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	AttackType string `json:"attackType"`
}

type enemySpawnMessage struct {
	Enemies []Enemy `json:"enemies"`
}

type enemyUpdateMessage struct {
	Enemies []Enemy `json:"enemies"`
}

type enemyDamageMessage struct {
	EnemyID    string  `json:"enemyId"`
	AttackerID string  `json:"attackerId"`
	Damage     float64 `json:"damage"`
	Health     float64 `json:"health"`
}

type enemyDeathMessage struct {
	EnemyID  string `json:"enemyId"`
	KillerID string `json:"killerId"`
}

type lootDropMessage struct {
	Loot LootDrop `json:"loot"`
}

type lootExpireMessage struct {
	LootID string `json:"lootId"`
}

type lootPickupResponse struct {
	Success bool   `json:"success"`
	LootID  string `json:"lootId"`
	Message string `json:"message,omitempty"`
	Gold    int    `json:"gold,omitempty"`
}

type levelCompleteMessage struct {
	Level       int     `json:"level"`
	Kills       int     `json:"kills"`
	Experience  int     `json:"experience"`
	DamageDealt float64 `json:"damageDealt"`
	DurationMS  int64   `json:"durationMs"`
}

type terrainChangeMessage struct {
	Level      int     `json:"level"`
	Name       string  `json:"name"`
	Reposition bool    `json:"reposition"`
	SpawnX     float64 `json:"spawnX"`
	SpawnY     float64 `json:"spawnY"`
	SpawnZ     float64 `json:"spawnZ"`
}

type systemNotification struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type healthChangeMessage struct {
	PlayerID string  `json:"playerId"`
	Health   float64 `json:"health"`
	Cause    string  `json:"cause,omitempty"`
	SourceID string  `json:"sourceId,omitempty"`
}

type heartbeatAck struct {
	ServerTime int64 `json:"serverTime"`
	ClientTime int64 `json:"clientTime"`
	RTTMillis  int64 `json:"rtt"`
}
