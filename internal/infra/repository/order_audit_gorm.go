package repository

import (
	"context"

	"starfruit/internal/domain/model"

	"gorm.io/gorm"
)

type OrderAuditGormRepository struct {
	db *gorm.DB
}

func NewOrderAuditGormRepository(db *gorm.DB) *OrderAuditGormRepository {
	return &OrderAuditGormRepository{db: db}
}

func (r *OrderAuditGormRepository) Create(ctx context.Context, audit model.OrderAudit) error {
	return r.db.WithContext(ctx).Create(&audit).Error
}

func (r *OrderAuditGormRepository) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderAudit, error) {
	var items []model.OrderAudit
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.OrderAudit{}, err
	}
	return items, nil
}
