package model

import "time"

const (
	SyncStatusSuccess       = "success"
	SyncStatusPartial       = "partial"
	SyncStatusFailed        = "failed"
	SyncStatusQuotaExceeded = "quota_exceeded"
)

// SyncLog is the append-only audit trail of sync attempts. Business
// logic never reads it back.
type SyncLog struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TerminalID string `gorm:"size:36;index" json:"terminal_id"`
	AccountID  uint   `gorm:"index" json:"account_id"`

	Status     string `gorm:"size:30;not null" json:"status"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"duration_ms"`

	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}
