package server

import "time"

const (
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	// Inbound message throttle per connection. Bursts above the cap are
	// dropped; the connection stays open.
	inboundMessagesPerSecond = 30
	inboundBurst             = 60

	worldBroadcastInterval = 100 * time.Millisecond
	regenTickInterval      = 100 * time.Millisecond
	aiTickInterval         = 200 * time.Millisecond
	lootSweepInterval      = 60 * time.Second
)

// Combat tuning.
const (
	meleeRange       = 6.0
	baseAttackDamage = 10.0

	// claimedPositionTolerance is how far a client's self-reported position
	// may disagree with the live one before the claim is worth a log line.
	claimedPositionTolerance = 8.0
	attackPowerScale = 0.5
	levelDamageScale = 2.0

	// baseAttackSpeed is attacks per second before equipment bonuses.
	baseAttackSpeed       = 1.0
	defaultAttackCooldown = time.Second

	basicAttackMultiplier    = 1.0
	powerAttackMultiplier    = 1.5
	criticalAttackMultiplier = 2.0
)

// Progression tuning.
const (
	experiencePerLevel  = 100
	statPointsPerLevel  = 5
	killExperiencePerEnemyLevel = 25
	eliteExperienceMultiplier   = 2
	eliteLevelInterval          = 3
)

// Enemy and wave tuning. Wave size and enemy strength scale linearly with
// the level counter.
const (
	enemyRegenPerTick = 0.5

	waveBaseEnemyCount  = 3
	waveEnemiesPerLevel = 1
	enemyBaseHealth     = 75.0
	enemyHealthPerLevel = 25.0
	enemyBaseDamage     = 5.0
	enemyDamagePerLevel = 2.0

	defaultEnemyRespawnDelay = 30 * time.Second
	waveTransitionPause      = 3 * time.Second
)

// Loot tuning.
const (
	lootDropChance  = 0.35
	lootTTL         = 60 * time.Second
	lootPickupRange = 5.0
	lootGoldMin     = 5
	lootGoldMax     = 25
)

// Player defaults used when a durable record is first created.
const (
	defaultPlayerMaxHealth = 100.0
	defaultPlayerStrength  = 10.0
	defaultPlayerDefense   = 5.0
	defaultPlayerSpeed     = 10.0
)
