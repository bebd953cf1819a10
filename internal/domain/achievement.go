package domain

// AchievementType distinguishes notifications raised after a game.
type AchievementType string

const (
	// AchievementLevelUp is raised when a player's rank changes.
	AchievementLevelUp AchievementType = "level_up"
	// AchievementBadge is raised when a new badge is granted.
	AchievementBadge AchievementType = "badge_unlocked"
)

// AchievementEvent is a transient notification. It is never persisted.
type AchievementEvent struct {
	ID        string          `json:"id"`
	PlayerID  string          `json:"playerId"`
	Type      AchievementType `json:"type"`
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle"`
	Icon      string          `json:"icon"`
	Timestamp int64           `json:"timestamp"`
}
