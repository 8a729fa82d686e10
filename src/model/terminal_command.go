package model

import "time"

const (
	CommandKindFetchCandles = "fetch_candles"
	CommandKindResync       = "resync_trades"
)

// TerminalCommand is a unit of work queued for a terminal and handed
// out through the heartbeat response. Delivery is consumed-once: the
// row is deleted the moment it is returned to the agent.
type TerminalCommand struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TerminalID string    `gorm:"size:36;not null;index" json:"terminal_id"`
	Kind       string    `gorm:"size:50;not null" json:"kind"`
	// Payload is a JSON document whose shape depends on Kind.
	Payload  string    `gorm:"type:text" json:"payload,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
}

func (TerminalCommand) TableName() string {
	return "terminal_commands"
}
