package externalmodel

import (
	"fmt"
	"time"
)

// Wire shapes pushed by terminal agents. Numeric trade fields arrive
// as strings exactly as the trading platform prints them; the mapper
// layer owns parsing so a malformed number fails that record instead
// of silently becoming zero.

var knownTimeframes = map[string]bool{
	"M1": true, "M5": true, "M15": true, "M30": true,
	"H1": true, "H4": true, "D1": true, "W1": true,
}

func IsKnownTimeframe(tf string) bool {
	return knownTimeframes[tf]
}

type HeartbeatRequest struct {
	TerminalID string `json:"terminalId"`
	Timestamp  string `json:"timestamp,omitempty"` // agent clock, RFC3339; informational
}

func (r *HeartbeatRequest) Validate() error {
	var fields []string
	if r.TerminalID == "" {
		fields = append(fields, "terminalId")
	}
	if r.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
			fields = append(fields, "timestamp")
		}
	}
	return newValidationError(fields...)
}

type HeartbeatResponse struct {
	Commands []CommandEnvelope `json:"commands"`
}

type CommandEnvelope struct {
	ID       uint   `json:"id"`
	Kind     string `json:"kind"`
	Payload  string `json:"payload,omitempty"`
	IssuedAt string `json:"issuedAt"`
}

type AgentTrade struct {
	Ticket     string `json:"ticket"`
	Symbol     string `json:"symbol"`
	Type       string `json:"type"` // "buy"/"sell" or "0"/"1"
	Lots       string `json:"lots"`
	OpenPrice  string `json:"openPrice"`
	ClosePrice string `json:"closePrice,omitempty"`
	Profit     string `json:"profit,omitempty"`
	Commission string `json:"commission,omitempty"`
	Swap       string `json:"swap,omitempty"`
	OpenTime   string `json:"openTime"`  // RFC3339
	CloseTime  string `json:"closeTime,omitempty"`
}

type TradesPush struct {
	TerminalID string       `json:"terminalId"`
	Trades     []AgentTrade `json:"trades"`
}

func (p *TradesPush) Validate() error {
	var fields []string
	if p.TerminalID == "" {
		fields = append(fields, "terminalId")
	}
	if len(p.Trades) == 0 {
		fields = append(fields, "trades")
	}
	for i, t := range p.Trades {
		if t.Ticket == "" {
			fields = append(fields, indexed("trades", i, "ticket"))
		}
		if t.Symbol == "" {
			fields = append(fields, indexed("trades", i, "symbol"))
		}
		if t.Type == "" {
			fields = append(fields, indexed("trades", i, "type"))
		}
		if t.OpenTime == "" {
			fields = append(fields, indexed("trades", i, "openTime"))
		}
	}
	return newValidationError(fields...)
}

type AgentPosition struct {
	Ticket       string `json:"ticket"`
	Symbol       string `json:"symbol"`
	Type         string `json:"type"`
	Lots         string `json:"lots"`
	OpenPrice    string `json:"openPrice"`
	CurrentPrice string `json:"currentPrice,omitempty"`
	Profit       string `json:"profit,omitempty"`
	OpenTime     string `json:"openTime,omitempty"`
}

type PositionsPush struct {
	TerminalID string          `json:"terminalId"`
	Positions  []AgentPosition `json:"positions"`
}

// Validate accepts an empty positions array: "no open positions" is a
// legitimate, complete snapshot.
func (p *PositionsPush) Validate() error {
	var fields []string
	if p.TerminalID == "" {
		fields = append(fields, "terminalId")
	}
	for i, pos := range p.Positions {
		if pos.Ticket == "" {
			fields = append(fields, indexed("positions", i, "ticket"))
		}
		if pos.Symbol == "" {
			fields = append(fields, indexed("positions", i, "symbol"))
		}
		if pos.Type == "" {
			fields = append(fields, indexed("positions", i, "type"))
		}
	}
	return newValidationError(fields...)
}

type AgentCandle struct {
	Time   string  `json:"time"` // RFC3339
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

type CandlesPush struct {
	TradeID   uint          `json:"tradeId"`
	Timeframe string        `json:"timeframe"`
	Candles   []AgentCandle `json:"candles"`
}

func (p *CandlesPush) Validate() error {
	var fields []string
	if p.TradeID == 0 {
		fields = append(fields, "tradeId")
	}
	if !IsKnownTimeframe(p.Timeframe) {
		fields = append(fields, "timeframe")
	}
	if len(p.Candles) == 0 {
		fields = append(fields, "candles")
	}
	for i, c := range p.Candles {
		if _, err := time.Parse(time.RFC3339, c.Time); err != nil {
			fields = append(fields, indexed("candles", i, "time"))
		}
		if c.High < c.Low {
			fields = append(fields, indexed("candles", i, "high"))
		}
	}
	return newValidationError(fields...)
}

func indexed(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
