package model

import "time"

// Terminal lifecycle states. A terminal is created PENDING and only a
// heartbeat moves it into RUNNING; STOPPED is terminal and rows are
// never hard-deleted.
const (
	TerminalStatusPending  = "PENDING"
	TerminalStatusStarting = "STARTING"
	TerminalStatusRunning  = "RUNNING"
	TerminalStatusStopping = "STOPPING"
	TerminalStatusStopped  = "STOPPED"
	TerminalStatusError    = "ERROR"
)

// TerminalInstance is one supervised remote worker process bound to a
// linked brokerage account. The external orchestrator owns the actual
// container; this row is the authoritative desired/observed state.
type TerminalInstance struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	AccountID     uint       `gorm:"not null;index" json:"account_id"`
	Status        string     `gorm:"size:20;not null;default:PENDING" json:"status"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	ErrorMessage  string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// One-to-many relation: commands queued for delivery on the next heartbeat.
	Commands []TerminalCommand `gorm:"foreignKey:TerminalID" json:"commands,omitempty"`
}

func (TerminalInstance) TableName() string {
	return "terminal_instances"
}

// IsActiveStatus reports whether the status belongs to the
// desired-active set the orchestrator must keep running.
func IsActiveStatus(status string) bool {
	switch status {
	case TerminalStatusPending, TerminalStatusStarting, TerminalStatusRunning:
		return true
	}
	return false
}

// IsTerminalStatus reports whether the lifecycle has ended for good.
func IsTerminalStatus(status string) bool {
	return status == TerminalStatusStopped
}
