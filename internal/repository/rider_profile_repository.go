package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type RiderProfileRepository interface {
	// 無ければデフォルト（available=true）で作って返す
	GetOrCreate(ctx context.Context, userID string) (model.RiderProfile, error)
	Update(ctx context.Context, profile model.RiderProfile) error
	SetAvailable(ctx context.Context, userID string, available bool) error
}
