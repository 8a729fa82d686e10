package model

import "time"

const (
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusError        = "error"
)

// BrokerConnection stores the broker credentials for one linked
// account. The password only ever exists at rest as ciphertext; the
// plaintext is reconstructed server-side for the orchestrator and
// nowhere else.
type BrokerConnection struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"user_id"`
	AccountID uint `gorm:"not null;uniqueIndex:idx_broker_connection_account" json:"account_id"`

	Server string `gorm:"size:120;not null" json:"server"`
	Login  string `gorm:"size:60;not null" json:"login"`
	// PasswordCiphertext is the vault output, key id prefix included.
	PasswordCiphertext string `gorm:"column:password_ciphertext;type:text" json:"-"`
	InvestorMode       bool   `json:"investor_mode"`

	ConnectionStatus string    `gorm:"size:30;not null;default:connected" json:"connection_status"`
	SyncsThisMonth   int       `gorm:"not null;default:0" json:"syncs_this_month"`
	SyncsResetAt     time.Time `json:"syncs_reset_at"`
	ErrorMessage     string    `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BrokerConnection) TableName() string {
	return "broker_connections"
}
