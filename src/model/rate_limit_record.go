package model

import "time"

// RateLimitRecord is one attempt row; sliding-window membership is a
// range query over (user_id, action, created_at).
type RateLimitRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_rate_limit_window" json:"user_id"`
	Action    string    `gorm:"size:60;not null;index:idx_rate_limit_window" json:"action"`
	CreatedAt time.Time `gorm:"index:idx_rate_limit_window" json:"created_at"`
}

func (RateLimitRecord) TableName() string {
	return "rate_limit_tracking"
}
