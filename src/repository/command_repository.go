package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type CommandRepository interface {
	Enqueue(ctx context.Context, command *model.TerminalCommand) error
	DrainByTerminal(ctx context.Context, terminalID string) ([]model.TerminalCommand, error)
}

type GormCommandRepository struct {
	db *gorm.DB
}

func NewCommandRepository(db *gorm.DB) *GormCommandRepository {
	return &GormCommandRepository{db: db}
}

func (r *GormCommandRepository) Enqueue(ctx context.Context, command *model.TerminalCommand) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "CommandRepository",
		"op":          "Enqueue",
		"terminal_id": command.TerminalID,
		"kind":        command.Kind,
	}).Debug("Enqueueing terminal command")

	return r.db.WithContext(ctx).Create(command).Error
}

// DrainByTerminal returns the terminal's queued commands in issue order
// and deletes them in the same transaction. Once returned, a command is
// gone regardless of whether the response reaches the agent.
func (r *GormCommandRepository) DrainByTerminal(ctx context.Context, terminalID string) ([]model.TerminalCommand, error) {
	var commands []model.TerminalCommand

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("terminal_id = ?", terminalID).
			Order("id ASC").
			Find(&commands).Error; err != nil {
			return err
		}
		if len(commands) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(commands))
		for _, c := range commands {
			ids = append(ids, c.ID)
		}
		return tx.
			Where("id IN ?", ids).
			Delete(&model.TerminalCommand{}).Error
	})
	if err != nil {
		return nil, err
	}
	return commands, nil
}
