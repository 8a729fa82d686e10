package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type RateLimitRepository interface {
	CountSince(ctx context.Context, userID uint, action string, since time.Time) (int64, error)
	Record(ctx context.Context, userID uint, action string) error
}

type GormRateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *GormRateLimitRepository {
	return &GormRateLimitRepository{db: db}
}

func (r *GormRateLimitRepository) CountSince(ctx context.Context, userID uint, action string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RateLimitRecord{}).
		Where("user_id = ? AND action = ? AND created_at >= ?", userID, action, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRateLimitRepository) Record(ctx context.Context, userID uint, action string) error {
	return r.db.WithContext(ctx).Create(&model.RateLimitRecord{
		UserID: userID,
		Action: action,
	}).Error
}
