package models

// RateCounter tracks accepted requests for one API key within one UTC
// minute window. Rows are disposable; a janitor may prune old windows.
type RateCounter struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ApiKeyID       string `gorm:"type:uuid;not null;uniqueIndex:idx_rate_counters_window,priority:1" json:"apiKeyId"`
	WindowStartMs  int64  `gorm:"not null;uniqueIndex:idx_rate_counters_window,priority:2" json:"windowStartMs"`
	Tokens         int    `gorm:"not null;default:0" json:"tokens"`
}

func (RateCounter) TableName() string { return "rate_counters" }
