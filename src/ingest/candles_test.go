package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/model"
)

type fakeCandleProvider struct {
	candles []model.CandleSnapshot
	err     error
	calls   int
}

func (p *fakeCandleProvider) FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.CandleSnapshot, error) {
	p.calls++
	return p.candles, p.err
}

func seedTrade(t *testing.T, db *gorm.DB, accountID uint, ticket string) uint {
	t.Helper()
	trade := &model.Trade{
		AccountID:      accountID,
		ExternalTicket: ticket,
		Symbol:         "EURUSD",
		Direction:      model.TradeDirectionLong,
		Lots:           0.5,
		OpenPrice:      decimal.NewFromFloat(1.0845),
		OpenTime:       time.Date(2026, time.August, 12, 9, 30, 0, 0, time.UTC),
		Status:         model.TradeStatusOpen,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to seed trade: %v", err)
	}
	return trade.ID
}

func agentCandles(n int) []externalmodel.AgentCandle {
	candles := make([]externalmodel.AgentCandle, 0, n)
	base := time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		candles = append(candles, externalmodel.AgentCandle{
			Time:  base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Open:  1.0840, High: 1.0860, Low: 1.0830, Close: 1.0850,
		})
	}
	return candles
}

func TestSyncCandlesReplacesSeries(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)
	tradeID := seedTrade(t, db, 7, "1001")

	err := svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: tradeID, Timeframe: "H1", Candles: agentCandles(3),
	})
	assert.NoError(t, err)

	err = svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: tradeID, Timeframe: "H1", Candles: agentCandles(2),
	})
	assert.NoError(t, err)

	var count int64
	db.Model(&model.CandleSnapshot{}).
		Where("trade_id = ? AND timeframe = ?", tradeID, "H1").Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSyncCandlesTimeframesIndependent(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)
	tradeID := seedTrade(t, db, 7, "1001")

	assert.NoError(t, svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: tradeID, Timeframe: "H1", Candles: agentCandles(3),
	}))
	assert.NoError(t, svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: tradeID, Timeframe: "M5", Candles: agentCandles(4),
	}))

	// Replacing one timeframe leaves the other series alone.
	assert.NoError(t, svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: tradeID, Timeframe: "H1", Candles: agentCandles(1),
	}))

	var m5 int64
	db.Model(&model.CandleSnapshot{}).
		Where("trade_id = ? AND timeframe = ?", tradeID, "M5").Count(&m5)
	assert.Equal(t, int64(4), m5)
}

func TestSyncCandlesUnknownTrade(t *testing.T) {
	svc, _ := newTestService(t, 100, nil)

	err := svc.SyncCandles(context.Background(), &externalmodel.CandlesPush{
		TradeID: 404, Timeframe: "H1", Candles: agentCandles(1),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRefreshCandlesQueuesCommandForRunningTerminal(t *testing.T) {
	provider := &fakeCandleProvider{}
	svc, db := newTestService(t, 100, provider)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)
	tradeID := seedTrade(t, db, 7, "1001")

	assert.NoError(t, svc.RefreshCandles(context.Background(), 7, tradeID, "H1"))

	var commands []model.TerminalCommand
	assert.NoError(t, db.Where("terminal_id = ?", "term-1").Find(&commands).Error)
	assert.Len(t, commands, 1)
	assert.Equal(t, model.CommandKindFetchCandles, commands[0].Kind)
	// The live terminal serves the refresh; no provider round trip.
	assert.Equal(t, 0, provider.calls)
}

func TestRefreshCandlesFallsBackToProvider(t *testing.T) {
	provider := &fakeCandleProvider{
		candles: []model.CandleSnapshot{
			{Time: time.Date(2026, time.August, 12, 9, 0, 0, 0, time.UTC), Open: 1.084, High: 1.086, Low: 1.083, Close: 1.085},
		},
	}
	svc, db := newTestService(t, 100, provider)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusStopped)
	tradeID := seedTrade(t, db, 7, "1001")

	assert.NoError(t, svc.RefreshCandles(context.Background(), 7, tradeID, "H1"))
	assert.Equal(t, 1, provider.calls)

	var candles []model.CandleSnapshot
	assert.NoError(t, db.Where("trade_id = ?", tradeID).Find(&candles).Error)
	assert.Len(t, candles, 1)
	assert.Equal(t, "H1", candles[0].Timeframe)
}

func TestRefreshCandlesProviderFailure(t *testing.T) {
	provider := &fakeCandleProvider{err: errors.New("upstream 503")}
	svc, db := newTestService(t, 100, provider)
	tradeID := seedTrade(t, db, 7, "1001")

	err := svc.RefreshCandles(context.Background(), 7, tradeID, "H1")
	assert.Error(t, err)
}

func TestRefreshCandlesNoSource(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	tradeID := seedTrade(t, db, 7, "1001")

	err := svc.RefreshCandles(context.Background(), 7, tradeID, "H1")
	assert.ErrorIs(t, err, ErrNoCandleSource)
}

func TestRefreshCandlesCrossAccountDenied(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	tradeID := seedTrade(t, db, 7, "1001")

	err := svc.RefreshCandles(context.Background(), 99, tradeID, "H1")
	assert.True(t, IsNotOwned(err))
}
