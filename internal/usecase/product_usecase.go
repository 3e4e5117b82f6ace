package usecase

import (
	"context"
	"net/http"
	"strings"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/google/uuid"
)

// ProductUsecaseは顧客向けの一覧と店舗オーナー向けのCRUD。
type ProductUsecase struct {
	products repo.ProductRepository
	stores   repo.StoreRepository
}

func NewProductUsecase(products repo.ProductRepository, stores repo.StoreRepository) *ProductUsecase {
	return &ProductUsecase{products: products, stores: stores}
}

type ProductInput struct {
	Name       string `json:"name"`
	PriceMilli int64  `json:"price_milli"`
	IsActive   *bool  `json:"is_active"`
}

// 顧客向け。activeな商品だけ。
func (u *ProductUsecase) ListActive(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	products, err := u.products.ListActive(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

func (u *ProductUsecase) ListByStore(ctx context.Context, storeID string) ([]model.Product, error) {
	if storeID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid store_id")
	}
	products, err := u.products.ListByStore(ctx, storeID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return products, nil
}

// 店舗オーナー向け。自店の商品だけ触れる。

func (u *ProductUsecase) ListOwn(ctx context.Context, ownerID string) ([]model.Product, error) {
	store, err := u.ownStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return u.ListByStore(ctx, store.ID)
}

func (u *ProductUsecase) Create(ctx context.Context, ownerID string, in ProductInput) (model.Product, error) {
	store, err := u.ownStore(ctx, ownerID)
	if err != nil {
		return model.Product{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.PriceMilli <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price_milli")
	}

	p := model.Product{
		ID:         uuid.NewString(),
		StoreID:    store.ID,
		Name:       strings.TrimSpace(in.Name),
		PriceMilli: in.PriceMilli,
		IsActive:   true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := u.products.Create(ctx, p); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) Update(ctx context.Context, ownerID string, productID string, in ProductInput) (model.Product, error) {
	store, err := u.ownStore(ctx, ownerID)
	if err != nil {
		return model.Product{}, err
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.StoreID != store.ID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if in.PriceMilli > 0 {
		p.PriceMilli = in.PriceMilli
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	//価格を変えても既存注文・カートのスナップショットには響かない
	if err := u.products.Update(ctx, p); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, ownerID string, productID string) error {
	store, err := u.ownStore(ctx, ownerID)
	if err != nil {
		return err
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if p.StoreID != store.ID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.products.Delete(ctx, productID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) ownStore(ctx context.Context, ownerID string) (model.Store, error) {
	if ownerID == "" {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	store, err := u.stores.FindByOwnerID(ctx, ownerID)
	if err == repo.ErrNotFound {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}
