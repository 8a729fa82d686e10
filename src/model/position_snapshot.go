package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionSnapshot is one open position in the terminal's last pushed
// point-in-time snapshot. The whole set for a terminal is replaced on
// every push; it is current state, not an event log.
type PositionSnapshot struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TerminalID string `gorm:"size:36;not null;index" json:"terminal_id"`

	Ticket    string `gorm:"size:60;not null" json:"ticket"`
	Symbol    string `gorm:"size:30;not null" json:"symbol"`
	Direction string `gorm:"size:10;not null" json:"direction"`

	Lots         float64         `json:"lots"`
	OpenPrice    decimal.Decimal `gorm:"type:numeric" json:"open_price"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric" json:"current_price"`
	Profit       decimal.Decimal `gorm:"type:numeric" json:"profit"`

	OpenTime  time.Time `json:"open_time"`
	CreatedAt time.Time `json:"created_at"`
}

func (PositionSnapshot) TableName() string {
	return "position_snapshots"
}
