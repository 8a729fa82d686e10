package ingest

import (
	"context"

	"terminalfleet/src/model"
	"terminalfleet/src/repository"
)

// CandleProvider supplies OHLC bars when no live terminal can serve a
// fetch-candles command. Implementations must enforce their own
// timeout and report transient failure instead of hanging.
type CandleProvider interface {
	FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.CandleSnapshot, error)
}

// Service is the sync ingestion pipeline: trades, position snapshots
// and candle series pushed by agents, reconciled into canonical
// storage behind the quota gate.
type Service struct {
	terminals   repository.TerminalRepository
	commands    repository.CommandRepository
	trades      repository.TradeRepository
	positions   repository.PositionRepository
	candles     repository.CandleRepository
	syncLogs    repository.SyncLogRepository
	quota       *QuotaGate
	provider    CandleProvider
}

func NewService(
	terminals repository.TerminalRepository,
	commands repository.CommandRepository,
	trades repository.TradeRepository,
	positions repository.PositionRepository,
	candles repository.CandleRepository,
	syncLogs repository.SyncLogRepository,
	quota *QuotaGate,
	provider CandleProvider,
) *Service {
	return &Service{
		terminals: terminals,
		commands:  commands,
		trades:    trades,
		positions: positions,
		candles:   candles,
		syncLogs:  syncLogs,
		quota:     quota,
		provider:  provider,
	}
}

// SyncResult summarizes one trades batch.
type SyncResult struct {
	Imported      int  `json:"imported"`
	Skipped       int  `json:"skipped"`
	Failed        int  `json:"failed"`
	QuotaExceeded bool `json:"quotaExceeded,omitempty"`
}
