package usecase

import (
	"context"
	"net/http"
	"strings"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/google/uuid"
)

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

type AddressCreateRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	Complement string `json:"complement"`
}

func (u *AddressUsecase) List(ctx context.Context, userID string) ([]model.Address, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	addrs, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return addrs, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID string, req AddressCreateRequest) (model.Address, error) {
	if userID == "" {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(req.Street) == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "street required")
	}
	if strings.TrimSpace(req.City) == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "city required")
	}

	a := model.Address{
		ID:         uuid.NewString(),
		UserID:     userID,
		Label:      strings.TrimSpace(req.Label),
		Street:     strings.TrimSpace(req.Street),
		City:       strings.TrimSpace(req.City),
		State:      strings.TrimSpace(req.State),
		Zip:        strings.TrimSpace(req.Zip),
		Complement: strings.TrimSpace(req.Complement),
	}
	if err := u.addresses.Create(ctx, a); err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return a, nil
}

// Deleteしても既存注文の配送先は変わらない（注文側にスナップショット済み）。
func (u *AddressUsecase) Delete(ctx context.Context, userID string, addressID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if a.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
