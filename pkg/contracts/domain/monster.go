package domain

// Monster hunting dataset columns
const (
	ColMonsterName   = "monster_name"
	ColRegion        = "region"
	ColKills         = "kills"
	ColDifficulty    = "difficulty"
	ColReward        = "reward"
	ColRewardPerKill = "reward_per_kill"
)

// Character dataset columns
const (
	ColName           = "name"
	ColCharacterClass = "character_class"
	ColIsMonster      = "is_monster"
)

// MonsterColumns lists the monster dataset header in file order
var MonsterColumns = []string{ColMonsterName, ColRegion, ColKills, ColDifficulty, ColReward}

// CharacterColumns lists the character dataset header in file order
var CharacterColumns = []string{ColName, ColCharacterClass, ColRegion, ColIsMonster}

// Difficulty is a monster difficulty tier
type Difficulty string

const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyExtreme Difficulty = "Extreme"
)

// DifficultyCodes is the fixed ordinal encoding of difficulty tiers
var DifficultyCodes = map[Difficulty]int64{
	DifficultyEasy:    1,
	DifficultyMedium:  2,
	DifficultyHard:    3,
	DifficultyExtreme: 4,
}

// Code returns the ordinal code of the tier
func (d Difficulty) Code() (int64, bool) {
	c, ok := DifficultyCodes[d]
	return c, ok
}

// UnknownLabel fills missing categorical entries
const UnknownLabel = "Unknown"

// MissingLabel is the group key used for null values in distributions
const MissingLabel = "<missing>"
