package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/mapper"
	"terminalfleet/src/model"
)

// SyncCandles replaces the trade's OHLC series for one timeframe.
// Naturally idempotent: the same push always produces the same series,
// so redeliveries need no dedup bookkeeping.
func (s *Service) SyncCandles(ctx context.Context, push *externalmodel.CandlesPush) error {
	if _, err := s.trades.GetByID(ctx, push.TradeID); err != nil {
		return err
	}

	candles := mapper.MapAgentCandles(push.TradeID, push.Timeframe, push.Candles)
	return s.candles.ReplaceForTrade(ctx, push.TradeID, push.Timeframe, candles)
}

// ErrNoCandleSource means neither a live terminal nor the market-data
// provider could serve the request.
var ErrNoCandleSource = errors.New("no candle source available")

// RefreshCandles re-requests a trade's chart series. With a live
// terminal on the account the work is queued as a fetch-candles
// command; otherwise the market-data provider is asked directly and
// the series replaced inline.
func (s *Service) RefreshCandles(ctx context.Context, accountID uint, tradeID uint, timeframe string) error {
	trade, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		return err
	}
	if trade.AccountID != accountID {
		return fmt.Errorf("trade %d: %w", tradeID, ErrNotOwned)
	}

	instance, err := s.terminals.GetActiveByAccount(ctx, accountID)
	if err == nil && instance.Status == model.TerminalStatusRunning {
		payload := fmt.Sprintf(`{"ticket":%q,"symbol":%q,"timeframe":%q}`,
			trade.ExternalTicket, trade.Symbol, timeframe)
		return s.commands.Enqueue(ctx, &model.TerminalCommand{
			TerminalID: instance.ID,
			Kind:       model.CommandKindFetchCandles,
			Payload:    payload,
			IssuedAt:   time.Now().UTC(),
		})
	}

	if s.provider == nil {
		return ErrNoCandleSource
	}

	fetched, err := s.provider.FetchCandles(ctx, trade.Symbol, timeframe)
	if err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"trade_id":  tradeID,
			"symbol":    trade.Symbol,
			"timeframe": timeframe,
		}).Warn("Market-data candle fallback failed")
		return fmt.Errorf("candle provider: %w", err)
	}

	for i := range fetched {
		fetched[i].TradeID = tradeID
		fetched[i].Timeframe = timeframe
	}
	return s.candles.ReplaceForTrade(ctx, tradeID, timeframe, fetched)
}

// ErrNotOwned means the trade exists but belongs to another account.
var ErrNotOwned = errors.New("trade does not belong to account")

// IsNotOwned reports whether err came from a cross-account trade access.
func IsNotOwned(err error) bool {
	return errors.Is(err, ErrNotOwned)
}
