package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/mapper"
	"terminalfleet/src/model"
)

// SyncTrades reconciles one agent-reported trades batch. Each record is
// upserted on (external_ticket, account_id): new rows count as
// imported, rows already stored with identical content count as
// skipped, and a record whose fields fail normalization counts as
// failed without aborting the rest of the batch. The whole call is
// admitted through the quota gate first; a quota breach imports
// nothing.
func (s *Service) SyncTrades(ctx context.Context, push *externalmodel.TradesPush) (*SyncResult, error) {
	started := time.Now()

	instance, err := s.terminals.GetByID(ctx, push.TerminalID)
	if err != nil {
		return nil, err
	}

	if err := s.quota.CheckAndConsume(ctx, instance.AccountID, started.UTC()); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.writeSyncLog(instance, &SyncResult{QuotaExceeded: true}, model.SyncStatusQuotaExceeded, err.Error(), started)
			return &SyncResult{QuotaExceeded: true}, nil
		}
		return nil, err
	}

	result := &SyncResult{}
	var firstRecordErr error

	for _, agentTrade := range push.Trades {
		trade, err := mapper.MapAgentTrade(instance.AccountID, agentTrade)
		if err != nil {
			result.Failed++
			if firstRecordErr == nil {
				firstRecordErr = err
			}
			logger.WithError(err).WithFields(map[string]interface{}{
				"terminal_id": push.TerminalID,
				"ticket":      agentTrade.Ticket,
			}).Warn("Rejected trade record during sync")
			continue
		}

		existing, err := s.trades.GetByTicket(ctx, instance.AccountID, trade.ExternalTicket)
		switch {
		case err == nil && sameTradeContent(existing, trade):
			result.Skipped++
			continue
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
		isNew := errors.Is(err, gorm.ErrRecordNotFound)

		if err := s.trades.Upsert(ctx, trade); err != nil {
			return nil, err
		}
		result.Imported++

		if isNew {
			s.requestChartCandles(ctx, push.TerminalID, trade)
		}
	}

	if err := s.terminals.UpdateFields(ctx, push.TerminalID, map[string]interface{}{
		"last_sync_at": started.UTC(),
	}); err != nil {
		logger.WithError(err).WithField("terminal_id", push.TerminalID).
			Warn("Failed to stamp last_sync_at")
	}

	status := model.SyncStatusSuccess
	errMsg := ""
	if result.Failed > 0 {
		status = model.SyncStatusPartial
		errMsg = firstRecordErr.Error()
	}
	s.writeSyncLog(instance, result, status, errMsg, started)

	return result, nil
}

// requestChartCandles queues a fetch-candles command so the agent
// backfills the chart series for a newly imported trade. Best effort:
// a lost command only delays the backfill.
func (s *Service) requestChartCandles(ctx context.Context, terminalID string, trade *model.Trade) {
	payload, err := json.Marshal(map[string]interface{}{
		"ticket":    trade.ExternalTicket,
		"symbol":    trade.Symbol,
		"timeframe": "H1",
		"from":      trade.OpenTime.Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := s.commands.Enqueue(ctx, &model.TerminalCommand{
		TerminalID: terminalID,
		Kind:       model.CommandKindFetchCandles,
		Payload:    string(payload),
		IssuedAt:   time.Now().UTC(),
	}); err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"terminal_id": terminalID,
			"ticket":      trade.ExternalTicket,
		}).Warn("Failed to enqueue fetch-candles command")
	}
}

func (s *Service) writeSyncLog(instance *model.TerminalInstance, result *SyncResult, status, errMsg string, started time.Time) {
	// Append-only trail; never blocks or fails the sync itself.
	entry := &model.SyncLog{
		TerminalID:   instance.ID,
		AccountID:    instance.AccountID,
		Status:       status,
		Imported:     result.Imported,
		Skipped:      result.Skipped,
		Failed:       result.Failed,
		DurationMs:   time.Since(started).Milliseconds(),
		ErrorMessage: errMsg,
	}
	if err := s.syncLogs.Create(context.Background(), entry); err != nil {
		logger.WithError(err).WithField("terminal_id", instance.ID).
			Warn("Failed to write sync log")
	}
}

// sameTradeContent reports whether a redelivered record carries nothing
// new compared to the stored row.
func sameTradeContent(a, b *model.Trade) bool {
	if a.Symbol != b.Symbol ||
		a.Direction != b.Direction ||
		a.Lots != b.Lots ||
		a.Status != b.Status {
		return false
	}
	if !a.OpenPrice.Equal(b.OpenPrice) ||
		!a.ClosePrice.Equal(b.ClosePrice) ||
		!a.Profit.Equal(b.Profit) ||
		!a.Commission.Equal(b.Commission) ||
		!a.Swap.Equal(b.Swap) {
		return false
	}
	if !a.OpenTime.Equal(b.OpenTime) {
		return false
	}
	if (a.CloseTime == nil) != (b.CloseTime == nil) {
		return false
	}
	if a.CloseTime != nil && !a.CloseTime.Equal(*b.CloseTime) {
		return false
	}
	return true
}
