package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type OrderAuditRepository interface {
	Create(ctx context.Context, audit model.OrderAudit) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderAudit, error)
}
