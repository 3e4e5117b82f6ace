package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"starfruit/internal/domain/model"
	"starfruit/internal/geo"
	repo "starfruit/internal/repository"

	"github.com/rs/zerolog/log"
)

// RiderUsecaseはライダーのプロフィール・稼働状態・配達マップ。
type RiderUsecase struct {
	riders repo.RiderProfileRepository
	orders repo.OrderRepository
	stores repo.StoreRepository
	geo    *geo.Resolver
	router *geo.Router
}

func NewRiderUsecase(
	riders repo.RiderProfileRepository,
	orders repo.OrderRepository,
	stores repo.StoreRepository,
	resolver *geo.Resolver,
	router *geo.Router,
) *RiderUsecase {
	return &RiderUsecase{riders: riders, orders: orders, stores: stores, geo: resolver, router: router}
}

type RiderProfileInput struct {
	CNHNumber    string     `json:"cnh_number"`
	CNHCategory  string     `json:"cnh_category"`
	CNHExpiry    *time.Time `json:"cnh_expiry"`
	VehicleType  string     `json:"vehicle_type"`
	VehiclePlate string     `json:"vehicle_plate"`
	City         string     `json:"city"`
	State        string     `json:"state"`
}

type RiderProfileOutput struct {
	model.RiderProfile
	// CNHの期限warning。配達のブロックはしない（表示のみ）。
	CNHExpired      bool `json:"cnh_expired"`
	CNHExpiringSoon bool `json:"cnh_expiring_soon"`
}

type AvailabilityInput struct {
	Available bool `json:"available"`
}

// 配達マップ。店舗と配送先の座標は段階的ジオコーダで必ず埋まる。
// 経路はルーティングAPIが落ちていたらnilで返し、画面はマーカーだけ出す。
type DeliveryMapOutput struct {
	OrderID  string     `json:"order_id"`
	Store    geo.Point  `json:"store"`
	Customer geo.Point  `json:"customer"`
	Route    *geo.Route `json:"route"`
}

func (u *RiderUsecase) GetProfile(ctx context.Context, riderID string) (RiderProfileOutput, error) {
	if riderID == "" {
		return RiderProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	p, err := u.riders.GetOrCreate(ctx, riderID)
	if err != nil {
		return RiderProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toProfileOutput(p), nil
}

func (u *RiderUsecase) UpdateProfile(ctx context.Context, riderID string, in RiderProfileInput) (RiderProfileOutput, error) {
	if riderID == "" {
		return RiderProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.riders.GetOrCreate(ctx, riderID)
	if err != nil {
		return RiderProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p.CNHNumber = strings.TrimSpace(in.CNHNumber)
	p.CNHCategory = strings.ToUpper(strings.TrimSpace(in.CNHCategory))
	p.CNHExpiry = in.CNHExpiry
	p.VehicleType = strings.TrimSpace(in.VehicleType)
	p.VehiclePlate = strings.ToUpper(strings.TrimSpace(in.VehiclePlate))
	p.City = strings.TrimSpace(in.City)
	p.State = strings.TrimSpace(in.State)

	if err := u.riders.Update(ctx, p); err != nil {
		return RiderProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toProfileOutput(p), nil
}

// SetAvailabilityはオフにしても進行中の配達には影響しない。
// 新しい受諾だけが止まる。
func (u *RiderUsecase) SetAvailability(ctx context.Context, riderID string, in AvailabilityInput) (RiderProfileOutput, error) {
	if riderID == "" {
		return RiderProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.riders.GetOrCreate(ctx, riderID)
	if err != nil {
		return RiderProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.riders.SetAvailable(ctx, riderID, in.Available); err != nil {
		return RiderProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	p.Available = in.Available
	return toProfileOutput(p), nil
}

func (u *RiderUsecase) DeliveryMap(ctx context.Context, riderID string, orderID string) (DeliveryMapOutput, error) {
	if riderID == "" {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//担当ライダー以外には見せない
	if o.RiderID == nil || *o.RiderID != riderID {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	store, err := u.stores.FindByID(ctx, o.StoreID)
	if err != nil && err != repo.ErrNotFound {
		return DeliveryMapOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := DeliveryMapOutput{
		OrderID:  o.ID,
		Store:    u.geo.Resolve(ctx, store.Street, store.City, store.State),
		Customer: u.geo.Resolve(ctx, o.DeliveryStreet, o.DeliveryCity, o.DeliveryState),
	}

	if u.router.Enabled() {
		route, err := u.router.Route(ctx, out.Store, out.Customer)
		if err != nil {
			//経路なしでもマーカーは出せる
			log.Warn().Err(err).Str("order_id", o.ID).Msg("route lookup failed, returning markers only")
		} else {
			out.Route = &route
		}
	}
	return out, nil
}

func toProfileOutput(p model.RiderProfile) RiderProfileOutput {
	now := time.Now()
	return RiderProfileOutput{
		RiderProfile:    p,
		CNHExpired:      p.CNHExpired(now),
		CNHExpiringSoon: p.CNHExpiringSoon(now),
	}
}
