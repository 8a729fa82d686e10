package repository

import (
	"context"

	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type PositionRepository interface {
	ReplaceForTerminal(ctx context.Context, terminalID string, positions []model.PositionSnapshot) error
	ListForTerminal(ctx context.Context, terminalID string) ([]model.PositionSnapshot, error)
}

type GormPositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *GormPositionRepository {
	return &GormPositionRepository{db: db}
}

// ReplaceForTerminal installs the terminal's latest point-in-time
// snapshot, wholesale. Last validated push wins.
func (r *GormPositionRepository) ReplaceForTerminal(ctx context.Context, terminalID string, positions []model.PositionSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("terminal_id = ?", terminalID).
			Delete(&model.PositionSnapshot{}).Error; err != nil {
			return err
		}
		if len(positions) == 0 {
			return nil
		}
		return tx.CreateInBatches(positions, 200).Error
	})
}

func (r *GormPositionRepository) ListForTerminal(ctx context.Context, terminalID string) ([]model.PositionSnapshot, error) {
	var positions []model.PositionSnapshot
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("open_time ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}
