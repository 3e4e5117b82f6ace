package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type StoreRepository interface {
	FindByID(ctx context.Context, storeID string) (model.Store, error)
	FindByOwnerID(ctx context.Context, ownerID string) (model.Store, error)
	ListActiveByCity(ctx context.Context, city string) ([]model.Store, error)
	Create(ctx context.Context, store model.Store) error
	Update(ctx context.Context, store model.Store) error
}
