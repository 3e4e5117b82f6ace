package repository

import (
	"context"
	"errors"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByCustomer(ctx context.Context, customerID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	return r.list(ctx, "customer_id = ?", customerID, statusIn, limit)
}

func (r *OrderGormRepository) ListByStore(ctx context.Context, storeID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	return r.list(ctx, "store_id = ?", storeID, statusIn, limit)
}

func (r *OrderGormRepository) ListByRider(ctx context.Context, riderID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	return r.list(ctx, "rider_id = ?", riderID, statusIn, limit)
}

func (r *OrderGormRepository) ListReadyUnassigned(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND rider_id IS NULL", model.OrderStatusReady).
		Order("created_at asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Create(&order).Error
}

// 受諾の競合はここで決着する。WHERE句の前提が崩れていればRowsAffected=0。
func (r *OrderGormRepository) ClaimForRider(ctx context.Context, orderID string, riderID string) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ? AND rider_id IS NULL", orderID, model.OrderStatusReady).
		Updates(map[string]any{
			"rider_id":     riderID,
			"status":       model.OrderStatusOnWay,
			"rider_status": model.RiderStatusGoingToStore,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrConflict
	}
	return nil
}

// 読み取ったスナップショット(expected)が今もDB上の姿と一致する時だけnextを書く。
func (r *OrderGormRepository) ApplyTransition(ctx context.Context, expected model.Order, next model.Order) error {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", expected.ID, expected.Status)

	if expected.RiderStatus == nil {
		q = q.Where("rider_status IS NULL")
	} else {
		q = q.Where("rider_status = ?", *expected.RiderStatus)
	}
	if expected.RiderID == nil {
		q = q.Where("rider_id IS NULL")
	} else {
		q = q.Where("rider_id = ?", *expected.RiderID)
	}

	res := q.Updates(map[string]any{
		"status":       next.Status,
		"rider_status": riderStatusValue(next.RiderStatus),
		"rider_id":     riderIDValue(next.RiderID),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 行が消えたのか前提が崩れたのかを区別する
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Order{}).
			Where("id = ?", expected.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrConflict
	}
	return nil
}

func (r *OrderGormRepository) list(ctx context.Context, cond string, arg string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where(cond, arg)
	if len(statusIn) > 0 {
		q = q.Where("status IN ?", statusIn)
	}
	var items []model.Order
	if err := q.Order("created_at desc").Limit(limit).Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func riderStatusValue(rs *model.RiderStatus) any {
	if rs == nil {
		return nil
	}
	return *rs
}

func riderIDValue(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}
