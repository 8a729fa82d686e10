package model

import "time"

// CandleSnapshot is one OHLC bar attached to a trade's chart for a
// given timeframe. The series for (trade, timeframe) is always
// replaced wholesale, never merged.
type CandleSnapshot struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TradeID   uint   `gorm:"not null;index:idx_candles_trade_timeframe" json:"trade_id"`
	Timeframe string `gorm:"size:10;not null;index:idx_candles_trade_timeframe" json:"timeframe"`

	Time   time.Time `gorm:"not null" json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`

	CreatedAt time.Time `json:"created_at"`
}

func (CandleSnapshot) TableName() string {
	return "candle_snapshots"
}
