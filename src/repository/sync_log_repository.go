package repository

import (
	"context"

	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type SyncLogRepository interface {
	Create(ctx context.Context, entry *model.SyncLog) error
}

type GormSyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

func (r *GormSyncLogRepository) Create(ctx context.Context, entry *model.SyncLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
