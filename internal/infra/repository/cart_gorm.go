package repository

import (
	"context"
	"errors"

	"starfruit/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) LoadSnapshot(ctx context.Context, userID string) ([]byte, bool, error) {
	var snap model.CartSnapshot
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap.Data, true, nil
}

func (r *CartGormRepository) SaveSnapshot(ctx context.Context, userID string, data []byte) error {
	snap := model.CartSnapshot{UserID: userID, Data: data}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&snap).Error
}

func (r *CartGormRepository) DeleteSnapshot(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartSnapshot{}).Error
}
