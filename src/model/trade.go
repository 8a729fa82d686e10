package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeDirectionLong  = "LONG"
	TradeDirectionShort = "SHORT"
)

const (
	TradeStatusOpen   = "open"
	TradeStatusClosed = "closed"
)

// Trade is the canonical journal row for one broker-side deal.
// (external_ticket, account_id) is the single source of deduplication
// truth; the unique index makes concurrent redeliveries collapse into
// the upsert path instead of duplicating rows.
type Trade struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	AccountID      uint   `gorm:"not null;index:idx_trades_ticket_account,unique" json:"account_id"`
	ExternalTicket string `gorm:"size:60;not null;index:idx_trades_ticket_account,unique" json:"external_ticket"`

	Symbol    string `gorm:"size:30;not null" json:"symbol"`
	Direction string `gorm:"size:10;not null" json:"direction"` // LONG, SHORT

	Lots       float64         `json:"lots"`
	OpenPrice  decimal.Decimal `gorm:"type:numeric" json:"open_price"`
	ClosePrice decimal.Decimal `gorm:"type:numeric" json:"close_price"`
	Profit     decimal.Decimal `gorm:"type:numeric" json:"profit"`
	Commission decimal.Decimal `gorm:"type:numeric" json:"commission"`
	Swap       decimal.Decimal `gorm:"type:numeric" json:"swap"`

	OpenTime  time.Time  `json:"open_time"`
	CloseTime *time.Time `json:"close_time,omitempty"`
	Status    string     `gorm:"size:20;not null;default:open" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trade) TableName() string {
	return "trades"
}
