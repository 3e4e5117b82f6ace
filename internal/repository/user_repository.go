package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user model.User) error
	FindByID(ctx context.Context, userID string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
}
