package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/model"
)

func agentPosition(ticket string) externalmodel.AgentPosition {
	return externalmodel.AgentPosition{
		Ticket:    ticket,
		Symbol:    "gbpusd",
		Type:      "sell",
		Lots:      "1.00",
		OpenPrice: "1.27300",
		Profit:    "-4.20",
		OpenTime:  "2026-08-12T08:00:00Z",
	}
}

func TestSyncPositionsReplacesSnapshot(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)

	err := svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{agentPosition("2001"), agentPosition("2002")},
	})
	assert.NoError(t, err)

	// The next push is the new complete truth, not a delta.
	err = svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{agentPosition("2003")},
	})
	assert.NoError(t, err)

	var positions []model.PositionSnapshot
	assert.NoError(t, db.Where("terminal_id = ?", "term-1").Find(&positions).Error)
	assert.Len(t, positions, 1)
	assert.Equal(t, "2003", positions[0].Ticket)
	assert.Equal(t, model.TradeDirectionShort, positions[0].Direction)
}

func TestSyncPositionsEmptySnapshotClearsAll(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)

	err := svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{agentPosition("2001")},
	})
	assert.NoError(t, err)

	err = svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{},
	})
	assert.NoError(t, err)

	var count int64
	db.Model(&model.PositionSnapshot{}).Where("terminal_id = ?", "term-1").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSyncPositionsBadRecordRejectsWholePush(t *testing.T) {
	svc, db := newTestService(t, 100, nil)
	seedTerminal(t, db, "term-1", 7, model.TerminalStatusRunning)

	err := svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{agentPosition("2001")},
	})
	assert.NoError(t, err)

	bad := agentPosition("2002")
	bad.OpenPrice = "not a price"

	err = svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "term-1",
		Positions:  []externalmodel.AgentPosition{agentPosition("2003"), bad},
	})
	var validationErr *externalmodel.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// The previous snapshot stays untouched on a rejected push.
	var positions []model.PositionSnapshot
	assert.NoError(t, db.Where("terminal_id = ?", "term-1").Find(&positions).Error)
	assert.Len(t, positions, 1)
	assert.Equal(t, "2001", positions[0].Ticket)
}

func TestSyncPositionsUnknownTerminal(t *testing.T) {
	svc, _ := newTestService(t, 100, nil)

	err := svc.SyncPositions(context.Background(), &externalmodel.PositionsPush{
		TerminalID: "no-such-terminal",
		Positions:  []externalmodel.AgentPosition{agentPosition("2001")},
	})
	assert.Error(t, err)
}
