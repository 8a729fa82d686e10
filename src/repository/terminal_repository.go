package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type TerminalRepository interface {
	Create(ctx context.Context, terminal *model.TerminalInstance) error
	GetByID(ctx context.Context, id string) (*model.TerminalInstance, error)
	GetActiveByAccount(ctx context.Context, accountID uint) (*model.TerminalInstance, error)
	Update(ctx context.Context, terminal *model.TerminalInstance) error
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error
	ListByStatuses(ctx context.Context, statuses []string) ([]model.TerminalInstance, error)
}

type GormTerminalRepository struct {
	db *gorm.DB
}

func NewTerminalRepository(db *gorm.DB) *GormTerminalRepository {
	return &GormTerminalRepository{db: db}
}

func (r *GormTerminalRepository) Create(ctx context.Context, terminal *model.TerminalInstance) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "TerminalRepository",
		"op":          "Create",
		"terminal_id": terminal.ID,
		"account_id":  terminal.AccountID,
	}).Debug("Creating terminal instance")

	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *GormTerminalRepository) GetByID(ctx context.Context, id string) (*model.TerminalInstance, error) {
	var terminal model.TerminalInstance
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&terminal).Error
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

// GetActiveByAccount returns the account's terminal that has not yet
// reached the STOPPED state. At most one such row exists per account.
func (r *GormTerminalRepository) GetActiveByAccount(ctx context.Context, accountID uint) (*model.TerminalInstance, error) {
	var terminal model.TerminalInstance
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status <> ?", accountID, model.TerminalStatusStopped).
		Order("created_at DESC").
		First(&terminal).Error
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *GormTerminalRepository) Update(ctx context.Context, terminal *model.TerminalInstance) error {
	return r.db.WithContext(ctx).Save(terminal).Error
}

func (r *GormTerminalRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.TerminalInstance{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTerminalRepository) ListByStatuses(ctx context.Context, statuses []string) ([]model.TerminalInstance, error) {
	var terminals []model.TerminalInstance
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&terminals).Error
	if err != nil {
		return nil, err
	}
	return terminals, nil
}
