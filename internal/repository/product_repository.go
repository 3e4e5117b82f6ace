package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (model.Product, error)
	ListActive(ctx context.Context, limit int) ([]model.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]model.Product, error)
	Create(ctx context.Context, product model.Product) error
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, productID string) error
}
