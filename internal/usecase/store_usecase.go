package usecase

import (
	"context"
	"net/http"
	"strings"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/google/uuid"
)

// StoreUsecaseは店舗プロフィール。オーナー1人につき店舗1つ。
type StoreUsecase struct {
	stores repo.StoreRepository
}

func NewStoreUsecase(stores repo.StoreRepository) *StoreUsecase {
	return &StoreUsecase{stores: stores}
}

type StoreInput struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Active *bool  `json:"active"`
}

func (u *StoreUsecase) GetMine(ctx context.Context, ownerID string) (model.Store, error) {
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

// Upsertは無ければ作成、あれば更新。店舗登録の導線を1本にするため。
func (u *StoreUsecase) Upsert(ctx context.Context, ownerID string, in StoreInput) (model.Store, error) {
	if ownerID == "" {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	store, err := u.stores.FindByOwnerID(ctx, ownerID)
	if err == repo.ErrNotFound {
		store = model.Store{
			ID:      uuid.NewString(),
			OwnerID: ownerID,
			Active:  true,
		}
		applyStoreInput(&store, in)
		if err := u.stores.Create(ctx, store); err != nil {
			return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return store, nil
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	applyStoreInput(&store, in)
	if err := u.stores.Update(ctx, store); err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return store, nil
}

func (u *StoreUsecase) ListActiveByCity(ctx context.Context, city string) ([]model.Store, error) {
	if strings.TrimSpace(city) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "city required")
	}
	stores, err := u.stores.ListActiveByCity(ctx, city)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return stores, nil
}

func applyStoreInput(s *model.Store, in StoreInput) {
	s.Name = strings.TrimSpace(in.Name)
	s.Street = strings.TrimSpace(in.Street)
	s.City = strings.TrimSpace(in.City)
	s.State = strings.TrimSpace(in.State)
	if in.Active != nil {
		s.Active = *in.Active
	}
}
