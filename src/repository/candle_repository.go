package repository

import (
	"context"

	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type CandleRepository interface {
	ReplaceForTrade(ctx context.Context, tradeID uint, timeframe string, candles []model.CandleSnapshot) error
	ListForTrade(ctx context.Context, tradeID uint, timeframe string) ([]model.CandleSnapshot, error)
}

type GormCandleRepository struct {
	db *gorm.DB
}

func NewCandleRepository(db *gorm.DB) *GormCandleRepository {
	return &GormCandleRepository{db: db}
}

// ReplaceForTrade swaps the whole (trade, timeframe) series in one
// transaction. The operation is idempotent: the same request always
// produces the same replacement.
func (r *GormCandleRepository) ReplaceForTrade(ctx context.Context, tradeID uint, timeframe string, candles []model.CandleSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("trade_id = ? AND timeframe = ?", tradeID, timeframe).
			Delete(&model.CandleSnapshot{}).Error; err != nil {
			return err
		}
		if len(candles) == 0 {
			return nil
		}
		return tx.CreateInBatches(candles, 200).Error
	})
}

func (r *GormCandleRepository) ListForTrade(ctx context.Context, tradeID uint, timeframe string) ([]model.CandleSnapshot, error) {
	var candles []model.CandleSnapshot
	err := r.db.WithContext(ctx).
		Where("trade_id = ? AND timeframe = ?", tradeID, timeframe).
		Order("time ASC").
		Find(&candles).Error
	if err != nil {
		return nil, err
	}
	return candles, nil
}
