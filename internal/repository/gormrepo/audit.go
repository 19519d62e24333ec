package gormrepo

import (
	"context"

	"github.com/kasirpos/kasir/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) ListByUser(ctx context.Context, owner string, limit int) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
