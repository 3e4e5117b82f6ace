package repository

import (
	"context"
	"errors"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"gorm.io/gorm"
)

type StoreGormRepository struct {
	db *gorm.DB
}

func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

func (r *StoreGormRepository) FindByID(ctx context.Context, storeID string) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

func (r *StoreGormRepository) FindByOwnerID(ctx context.Context, ownerID string) (model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

func (r *StoreGormRepository) ListActiveByCity(ctx context.Context, city string) ([]model.Store, error) {
	var items []model.Store
	err := r.db.WithContext(ctx).
		Where("active = ? AND city = ?", true, city).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return []model.Store{}, err
	}
	return items, nil
}

func (r *StoreGormRepository) Create(ctx context.Context, store model.Store) error {
	return r.db.WithContext(ctx).Create(&store).Error
}

func (r *StoreGormRepository) Update(ctx context.Context, store model.Store) error {
	res := r.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"name":   store.Name,
			"street": store.Street,
			"city":   store.City,
			"state":  store.State,
			"active": store.Active,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
