package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, address model.Address) error
	FindByID(ctx context.Context, addressID string) (model.Address, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Address, error)
	Delete(ctx context.Context, addressID string) error
}
