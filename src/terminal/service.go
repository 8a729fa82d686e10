package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/model"
	"terminalfleet/src/repository"
)

// Service owns the terminal lifecycle. It never talks to the container
// runtime itself; the external orchestrator polls the desired state and
// does the starting and stopping.
type Service struct {
	terminals   repository.TerminalRepository
	commands    repository.CommandRepository
	connections repository.BrokerConnectionRepository
	config      Config
}

func NewService(
	terminals repository.TerminalRepository,
	commands repository.CommandRepository,
	connections repository.BrokerConnectionRepository,
	config Config,
) *Service {
	return &Service{
		terminals:   terminals,
		commands:    commands,
		connections: connections,
		config:      config,
	}
}

// EnableAutoSync is idempotent: while a non-STOPPED terminal exists for
// the account it is returned unchanged, otherwise a fresh PENDING one
// is created. The account must have a broker connection first.
func (s *Service) EnableAutoSync(ctx context.Context, accountID, userID uint) (*model.TerminalInstance, error) {
	if _, err := s.connections.GetByAccount(ctx, accountID); err != nil {
		return nil, err
	}

	existing, err := s.terminals.GetActiveByAccount(ctx, accountID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	instance := &model.TerminalInstance{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Status:    model.TerminalStatusPending,
	}
	if err := s.terminals.Create(ctx, instance); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"terminal_id": instance.ID,
		"account_id":  accountID,
		"user_id":     userID,
	}).Info("Auto-sync enabled, terminal pending")

	return instance, nil
}

// DisableAutoSync requests a teardown. The orchestrator removes the
// container; the terminal reaches STOPPED only via its final status
// report or heartbeat silence.
func (s *Service) DisableAutoSync(ctx context.Context, accountID uint) error {
	instance, err := s.terminals.GetActiveByAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.terminals.UpdateFields(ctx, instance.ID, map[string]interface{}{
		"status": model.TerminalStatusStopping,
	}); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"terminal_id": instance.ID,
		"account_id":  accountID,
	}).Info("Auto-sync disabled, terminal stopping")

	return nil
}

// ProcessHeartbeat records liveness, advances PENDING/STARTING to
// RUNNING, and drains the pending command queue. Drained commands are
// delivered at most once per successful call.
func (s *Service) ProcessHeartbeat(ctx context.Context, terminalID string) ([]model.TerminalCommand, error) {
	instance, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"last_heartbeat": now,
	}
	if instance.Status == model.TerminalStatusPending || instance.Status == model.TerminalStatusStarting {
		updates["status"] = model.TerminalStatusRunning
		updates["error_message"] = ""

		if instance.ErrorMessage != "" {
			// Coming back from a recorded failure: the agent likely
			// missed pushes, so have it re-send everything. Delivered
			// in this same response via the drain below.
			if err := s.commands.Enqueue(ctx, &model.TerminalCommand{
				TerminalID: terminalID,
				Kind:       model.CommandKindResync,
				IssuedAt:   now,
			}); err != nil {
				logger.WithError(err).WithField("terminal_id", terminalID).
					Warn("Failed to enqueue resync after recovery")
			}
		}
	}

	if err := s.terminals.UpdateFields(ctx, terminalID, updates); err != nil {
		return nil, err
	}

	commands, err := s.commands.DrainByTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	if len(commands) > 0 {
		logger.WithFields(map[string]interface{}{
			"terminal_id": terminalID,
			"commands":    len(commands),
		}).Debug("Delivered queued commands on heartbeat")
	}

	return commands, nil
}

// ReportFinalStatus accepts the agent's last word before it goes away:
// STOPPED after a clean teardown, ERROR with a message otherwise.
func (s *Service) ReportFinalStatus(ctx context.Context, terminalID, status, errorMessage string) error {
	if status != model.TerminalStatusStopped && status != model.TerminalStatusError {
		return ErrInvalidStatusReport
	}

	instance, err := s.terminals.GetByID(ctx, terminalID)
	if err != nil {
		return err
	}
	if model.IsTerminalStatus(instance.Status) {
		// Already stopped; nothing to move.
		return nil
	}

	if err := s.terminals.UpdateFields(ctx, terminalID, map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}); err != nil {
		return err
	}

	if status == model.TerminalStatusError {
		// Surface the failure on the connection too, where the
		// dashboard reads it. Best effort.
		if err := s.connections.UpdateFields(ctx, instance.AccountID, map[string]interface{}{
			"connection_status": model.ConnectionStatusError,
			"error_message":     errorMessage,
		}); err != nil {
			logger.WithError(err).WithField("account_id", instance.AccountID).
				Warn("Failed to mark broker connection errored")
		}
	}
	return nil
}

// EnqueueCommand queues work for delivery on the terminal's next
// heartbeat.
func (s *Service) EnqueueCommand(ctx context.Context, terminalID, kind, payload string) error {
	if _, err := s.terminals.GetByID(ctx, terminalID); err != nil {
		return err
	}
	return s.commands.Enqueue(ctx, &model.TerminalCommand{
		TerminalID: terminalID,
		Kind:       kind,
		Payload:    payload,
		IssuedAt:   time.Now().UTC(),
	})
}

// StatusForAccount returns the account's terminal with its derived
// health, or connected=false when none exists.
func (s *Service) StatusForAccount(ctx context.Context, accountID uint) (*model.TerminalInstance, bool, error) {
	instance, err := s.terminals.GetActiveByAccount(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return instance, true, nil
}

// DesiredActive lists the terminals the orchestrator must keep running.
func (s *Service) DesiredActive(ctx context.Context) ([]model.TerminalInstance, error) {
	return s.terminals.ListByStatuses(ctx, []string{
		model.TerminalStatusPending,
		model.TerminalStatusStarting,
		model.TerminalStatusRunning,
	})
}

var ErrInvalidStatusReport = errors.New("final status must be STOPPED or ERROR")
