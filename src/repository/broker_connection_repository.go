package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type BrokerConnectionRepository interface {
	Create(ctx context.Context, connection *model.BrokerConnection) error
	GetByAccount(ctx context.Context, accountID uint) (*model.BrokerConnection, error)
	UpdateFields(ctx context.Context, accountID uint, updates map[string]interface{}) error
	IncrementSyncs(ctx context.Context, accountID uint, now time.Time, rollover bool) error
}

type GormBrokerConnectionRepository struct {
	db *gorm.DB
}

func NewBrokerConnectionRepository(db *gorm.DB) *GormBrokerConnectionRepository {
	return &GormBrokerConnectionRepository{db: db}
}

// Create inserts the connection. The unique index on account_id turns a
// duplicate connect into gorm.ErrDuplicatedKey (TranslateError is on).
func (r *GormBrokerConnectionRepository) Create(ctx context.Context, connection *model.BrokerConnection) error {
	logger.WithFields(map[string]interface{}{
		"repo":       "BrokerConnectionRepository",
		"op":         "Create",
		"account_id": connection.AccountID,
		"server":     connection.Server,
	}).Debug("Creating broker connection")

	return r.db.WithContext(ctx).Create(connection).Error
}

func (r *GormBrokerConnectionRepository) GetByAccount(ctx context.Context, accountID uint) (*model.BrokerConnection, error) {
	var connection model.BrokerConnection
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&connection).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

func (r *GormBrokerConnectionRepository) UpdateFields(ctx context.Context, accountID uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.BrokerConnection{}).
		Where("account_id = ?", accountID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementSyncs bumps the monthly counter for one accepted sync call.
// On a calendar-month rollover the counter restarts at 1 and the reset
// marker moves to now; otherwise it is a plain SQL-side increment.
func (r *GormBrokerConnectionRepository) IncrementSyncs(ctx context.Context, accountID uint, now time.Time, rollover bool) error {
	updates := map[string]interface{}{
		"syncs_this_month": gorm.Expr("syncs_this_month + 1"),
		"updated_at":       now,
	}
	if rollover {
		updates["syncs_this_month"] = 1
		updates["syncs_reset_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&model.BrokerConnection{}).
		Where("account_id = ?", accountID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
