package repository

import (
	"context"

	"gorm.io/gorm"

	"terminalfleet/src/model"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLogEntry) error
}

type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Create(ctx context.Context, entry *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
