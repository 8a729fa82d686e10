package model

import "time"

// AuditLogEntry records a sensitive mutation for later review. Writes
// are best-effort and must never fail the operation they describe.
type AuditLogEntry struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`

	Action     string `gorm:"size:60;not null;index" json:"action"` // e.g. "connect_mt5"
	Resource   string `gorm:"size:60;not null" json:"resource"`
	ResourceID string `gorm:"size:60" json:"resource_id"`

	// Metadata holds extra context as JSON. Never credentials.
	Metadata  string `gorm:"type:text" json:"metadata,omitempty"`
	SourceIP  string `gorm:"size:60" json:"source_ip"`
	UserAgent string `gorm:"size:255" json:"user_agent"`

	CreatedAt time.Time `json:"created_at"`
}

func (AuditLogEntry) TableName() string {
	return "audit_logs"
}
