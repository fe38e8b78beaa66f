package catalog

// RoomType classifies a dungeon stage.
type RoomType string

const (
	RoomSafe      RoomType = "safe"
	RoomCombat    RoomType = "combat"
	RoomChallenge RoomType = "challenge"
	RoomReward    RoomType = "reward"
	RoomBoss      RoomType = "boss"
)

// RewardKind is what completing a room grants.
type RewardKind string

const (
	RewardTreasure RewardKind = "treasure"
	RewardCards    RewardKind = "cards"
	RewardVictory  RewardKind = "victory"
)

// Reward describes a room's completion reward.
type Reward struct {
	Kind   RewardKind
	Amount int
}

// EnemyTemplate is the immutable definition of a room's encounter.
type EnemyTemplate struct {
	Name   string
	Health int
	Attack int
	Boss   bool
}

// ChallengeTemplate describes a non-combat skill check.
type ChallengeTemplate struct {
	Description string
	Difficulty  int // check passes when d6 + hero attack >= Difficulty
	FailDamage  int
}

// RoomTemplate is the immutable definition of one dungeon stage.
type RoomTemplate struct {
	Name        string
	Description string
	Type        RoomType
	Enemy       *EnemyTemplate
	Challenge   *ChallengeTemplate
	Reward      Reward
}

// Dungeon returns the fixed room sequence for a match, ending at the boss lair.
func Dungeon() []RoomTemplate {
	return []RoomTemplate{
		{
			Name: "Dungeon Entrance", Type: RoomSafe,
			Description: "Torchlight flickers over the worn steps leading down.",
			Reward:      Reward{Kind: RewardTreasure, Amount: 0},
		},
		{
			Name: "Goblin Warren", Type: RoomCombat,
			Description: "Crude bedding and gnawed bones litter the floor.",
			Enemy:       &EnemyTemplate{Name: "Goblin", Health: 2, Attack: 1},
			Reward:      Reward{Kind: RewardTreasure, Amount: 1},
		},
		{
			Name: "Collapsed Bridge", Type: RoomChallenge,
			Description: "A rotten rope bridge sways over a black chasm.",
			Challenge:   &ChallengeTemplate{Description: "Cross the crumbling bridge", Difficulty: 5, FailDamage: 2},
			Reward:      Reward{Kind: RewardTreasure, Amount: 1},
		},
		{
			Name: "Bone Gallery", Type: RoomCombat,
			Description: "Rows of propped skeletons line the walls. One moves.",
			Enemy:       &EnemyTemplate{Name: "Skeleton Warrior", Health: 4, Attack: 2},
			Reward:      Reward{Kind: RewardTreasure, Amount: 2},
		},
		{
			Name: "Forgotten Vault", Type: RoomReward,
			Description: "Coins spill from a chest that breathes.",
			Enemy:       &EnemyTemplate{Name: "Mimic", Health: 3, Attack: 2},
			Reward:      Reward{Kind: RewardCards, Amount: 2},
		},
		{
			Name: "Brute's Hall", Type: RoomCombat,
			Description: "The ceiling is scarred by the swings of something huge.",
			Enemy:       &EnemyTemplate{Name: "Orc Brute", Health: 6, Attack: 2},
			Reward:      Reward{Kind: RewardTreasure, Amount: 2},
		},
		{
			Name: "Dragon's Lair", Type: RoomBoss,
			Description: "Heat shimmers over a hoard of gold. Two eyes open.",
			Enemy:       &EnemyTemplate{Name: "Ancient Dragon", Health: 12, Attack: 3, Boss: true},
			Reward:      Reward{Kind: RewardVictory, Amount: 0},
		},
	}
}
