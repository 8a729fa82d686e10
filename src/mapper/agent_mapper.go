package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/model"
)

// MapAgentTrade converts one agent-reported trade into the canonical
// model. A malformed numeric or time field fails the record (the
// caller keeps processing the rest of the batch) instead of silently
// collapsing to zero.
func MapAgentTrade(accountID uint, in externalmodel.AgentTrade) (*model.Trade, error) {
	direction, err := NormalizeDirection(in.Type)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}

	lots, err := parseFloat("lots", in.Lots, true)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}

	openPrice, err := parseDecimal("openPrice", in.OpenPrice, true)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	closePrice, err := parseDecimal("closePrice", in.ClosePrice, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	profit, err := parseDecimal("profit", in.Profit, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	commission, err := parseDecimal("commission", in.Commission, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	swap, err := parseDecimal("swap", in.Swap, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}

	openTime, err := time.Parse(time.RFC3339, in.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: invalid openTime %q", in.Ticket, in.OpenTime)
	}

	trade := &model.Trade{
		AccountID:      accountID,
		ExternalTicket: in.Ticket,
		Symbol:         strings.ToUpper(in.Symbol),
		Direction:      direction,
		Lots:           lots,
		OpenPrice:      openPrice,
		ClosePrice:     closePrice,
		Profit:         profit,
		Commission:     commission,
		Swap:           swap,
		OpenTime:       openTime.UTC(),
		Status:         model.TradeStatusOpen,
	}

	if in.CloseTime != "" {
		closeTime, err := time.Parse(time.RFC3339, in.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("ticket %s: invalid closeTime %q", in.Ticket, in.CloseTime)
		}
		utc := closeTime.UTC()
		trade.CloseTime = &utc
		trade.Status = model.TradeStatusClosed
	}

	return trade, nil
}

// MapAgentPosition converts one open position from a snapshot push.
func MapAgentPosition(terminalID string, in externalmodel.AgentPosition) (*model.PositionSnapshot, error) {
	direction, err := NormalizeDirection(in.Type)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}

	lots, err := parseFloat("lots", in.Lots, true)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	openPrice, err := parseDecimal("openPrice", in.OpenPrice, true)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	currentPrice, err := parseDecimal("currentPrice", in.CurrentPrice, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}
	profit, err := parseDecimal("profit", in.Profit, false)
	if err != nil {
		return nil, fmt.Errorf("ticket %s: %w", in.Ticket, err)
	}

	pos := &model.PositionSnapshot{
		TerminalID:   terminalID,
		Ticket:       in.Ticket,
		Symbol:       strings.ToUpper(in.Symbol),
		Direction:    direction,
		Lots:         lots,
		OpenPrice:    openPrice,
		CurrentPrice: currentPrice,
		Profit:       profit,
	}

	if in.OpenTime != "" {
		openTime, err := time.Parse(time.RFC3339, in.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("ticket %s: invalid openTime %q", in.Ticket, in.OpenTime)
		}
		pos.OpenTime = openTime.UTC()
	}

	return pos, nil
}

// MapAgentCandles builds the replacement OHLC series for a trade and
// timeframe. Times were already validated at the boundary.
func MapAgentCandles(tradeID uint, timeframe string, in []externalmodel.AgentCandle) []model.CandleSnapshot {
	candles := make([]model.CandleSnapshot, 0, len(in))
	for _, c := range in {
		ts, err := time.Parse(time.RFC3339, c.Time)
		if err != nil {
			continue
		}
		candles = append(candles, model.CandleSnapshot{
			TradeID:   tradeID,
			Timeframe: timeframe,
			Time:      ts.UTC(),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	return candles
}

// NormalizeDirection maps broker-side direction encodings onto the
// canonical LONG/SHORT pair. MT-style platforms report "buy"/"sell" or
// the order-type ordinals "0"/"1".
func NormalizeDirection(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy", "b", "0", "long":
		return model.TradeDirectionLong, nil
	case "sell", "s", "1", "short":
		return model.TradeDirectionShort, nil
	}
	return "", fmt.Errorf("unknown direction %q", raw)
}

func parseDecimal(field, v string, required bool) (decimal.Decimal, error) {
	if v == "" {
		if required {
			return decimal.Zero, fmt.Errorf("missing %s", field)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, v)
	}
	return d, nil
}

func parseFloat(field, v string, required bool) (float64, error) {
	if v == "" {
		if required {
			return 0, fmt.Errorf("missing %s", field)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, v)
	}
	return f, nil
}
