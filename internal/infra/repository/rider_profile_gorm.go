package repository

import (
	"context"
	"errors"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"gorm.io/gorm"
)

type RiderProfileGormRepository struct {
	db *gorm.DB
}

func NewRiderProfileGormRepository(db *gorm.DB) *RiderProfileGormRepository {
	return &RiderProfileGormRepository{db: db}
}

func (r *RiderProfileGormRepository) GetOrCreate(ctx context.Context, userID string) (model.RiderProfile, error) {
	var p model.RiderProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = model.RiderProfile{UserID: userID, Available: true}
		if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
			return model.RiderProfile{}, err
		}
		return p, nil
	}
	if err != nil {
		return model.RiderProfile{}, err
	}
	return p, nil
}

func (r *RiderProfileGormRepository) Update(ctx context.Context, profile model.RiderProfile) error {
	res := r.db.WithContext(ctx).Model(&model.RiderProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"cnh_number":    profile.CNHNumber,
			"cnh_category":  profile.CNHCategory,
			"cnh_expiry":    profile.CNHExpiry,
			"vehicle_type":  profile.VehicleType,
			"vehicle_plate": profile.VehiclePlate,
			"city":          profile.City,
			"state":         profile.State,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *RiderProfileGormRepository) SetAvailable(ctx context.Context, userID string, available bool) error {
	res := r.db.WithContext(ctx).Model(&model.RiderProfile{}).
		Where("user_id = ?", userID).
		Update("available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
