package ingest

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/externalmodel"
	"terminalfleet/src/mapper"
	"terminalfleet/src/model"
)

// SyncPositions installs the terminal's open-position snapshot, full
// replace. A position list from a live terminal is a complete
// point-in-time snapshot, so the last successfully validated push wins;
// if two pushes race and the later-arriving one is logically stale, its
// snapshot still sticks until the next push. Accepted limitation, not
// something to merge or diff around.
func (s *Service) SyncPositions(ctx context.Context, push *externalmodel.PositionsPush) error {
	if _, err := s.terminals.GetByID(ctx, push.TerminalID); err != nil {
		return err
	}

	// A partial snapshot would misrepresent current state, so any bad
	// record rejects the whole push.
	positions := make([]model.PositionSnapshot, 0, len(push.Positions))
	for _, agentPosition := range push.Positions {
		position, err := mapper.MapAgentPosition(push.TerminalID, agentPosition)
		if err != nil {
			return &externalmodel.ValidationError{Fields: []string{err.Error()}}
		}
		positions = append(positions, *position)
	}

	if err := s.positions.ReplaceForTerminal(ctx, push.TerminalID, positions); err != nil {
		return err
	}

	if err := s.terminals.UpdateFields(ctx, push.TerminalID, map[string]interface{}{
		"last_sync_at": time.Now().UTC(),
	}); err != nil {
		logger.WithError(err).WithField("terminal_id", push.TerminalID).
			Warn("Failed to stamp last_sync_at")
	}

	return nil
}
