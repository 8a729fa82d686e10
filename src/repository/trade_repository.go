package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"terminalfleet/src/model"
)

type TradeRepository interface {
	GetByTicket(ctx context.Context, accountID uint, ticket string) (*model.Trade, error)
	GetByID(ctx context.Context, id uint) (*model.Trade, error)
	Upsert(ctx context.Context, trade *model.Trade) error
}

type GormTradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) *GormTradeRepository {
	return &GormTradeRepository{db: db}
}

func (r *GormTradeRepository) GetByTicket(ctx context.Context, accountID uint, ticket string) (*model.Trade, error) {
	var trade model.Trade
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND external_ticket = ?", accountID, ticket).
		First(&trade).Error
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (r *GormTradeRepository) GetByID(ctx context.Context, id uint) (*model.Trade, error) {
	var trade model.Trade
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&trade).Error
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// Upsert writes the trade keyed on (external_ticket, account_id). The
// store's conflict resolution, not any in-process lock, is what keeps
// concurrent redeliveries from duplicating rows.
func (r *GormTradeRepository) Upsert(ctx context.Context, trade *model.Trade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"},
				{Name: "external_ticket"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"symbol",
				"direction",
				"lots",
				"open_price",
				"close_price",
				"profit",
				"commission",
				"swap",
				"open_time",
				"close_time",
				"status",
				"updated_at",
			}),
		}).
		Create(trade).Error
}
