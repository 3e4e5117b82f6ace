package usecase

import (
	"context"
	"net/http"
	"time"

	"starfruit/internal/domain/lifecycle"
	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"
)

const listLimit = 50

// OrderUsecaseは注文の参照系。遷移はDeliveryUsecase側。
type OrderUsecase struct {
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	audits repo.OrderAuditRepository
	stores repo.StoreRepository
}

func NewOrderUsecase(
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	audits repo.OrderAuditRepository,
	stores repo.StoreRepository,
) *OrderUsecase {
	return &OrderUsecase{orders: orders, items: items, audits: audits, stores: stores}
}

type OrderItemOutput struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceMilli int64  `json:"unit_price_milli"`
	Qty            int64  `json:"qty"`
	SubtotalMilli  int64  `json:"subtotal_milli"`
}

type OrderOutput struct {
	ID            string            `json:"id"`
	CustomerID    string            `json:"customer_id"`
	StoreID       string            `json:"store_id"`
	RiderID       *string           `json:"rider_id"`
	Status        string            `json:"status"`
	RiderStatus   *string           `json:"rider_status"`
	TotalMilli    int64             `json:"total_milli"`
	PaymentMethod string            `json:"payment_method"`
	Delivery      DeliveryAddress   `json:"delivery"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Items         []OrderItemOutput `json:"items,omitempty"`
	// そのアクターが今押せる操作（UIの出し分け用）
	Actions []string `json:"actions,omitempty"`
}

type DeliveryAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	Complement string `json:"complement"`
}

type OrderAuditOutput struct {
	ActorType       string    `json:"actor_type"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	FromRiderStatus *string   `json:"from_rider_status"`
	ToRiderStatus   *string   `json:"to_rider_status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListForCustomerは自分の注文を新しい順で返す。
func (u *OrderUsecase) ListForCustomer(ctx context.Context, customerID string, statusIn []model.OrderStatus) ([]OrderOutput, error) {
	if customerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orders, err := u.orders.ListByCustomer(ctx, customerID, statusIn, listLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.toOutputs(orders, lifecycle.Actor{ID: customerID, Type: model.UserTypeCustomer}), nil
}

// ListForStoreOwnerはオーナーの店舗宛の注文を返す。
func (u *OrderUsecase) ListForStoreOwner(ctx context.Context, ownerID string, statusIn []model.OrderStatus) ([]OrderOutput, error) {
	store, err := u.storeOf(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	orders, err := u.orders.ListByStore(ctx, store.ID, statusIn, listLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.toOutputs(orders, lifecycle.Actor{ID: ownerID, Type: model.UserTypeStore}), nil
}

// GetDetailは注文の詳細＋明細＋履歴。閲覧できるのは当事者だけで、
// 他人の注文は「存在しない扱い」にする。
func (u *OrderUsecase) GetDetail(ctx context.Context, actor lifecycle.Actor, orderID string) (OrderOutput, error) {
	o, err := u.findVisible(ctx, actor, orderID)
	if err != nil {
		return OrderOutput{}, err
	}

	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := toOrderOutput(o, items)
	out.Actions = triggerNames(lifecycle.AllowedTriggers(o, actor))
	return out, nil
}

// History返却。詳細と同じ可視性ルール。
func (u *OrderUsecase) History(ctx context.Context, actor lifecycle.Actor, orderID string) ([]OrderAuditOutput, error) {
	if _, err := u.findVisible(ctx, actor, orderID); err != nil {
		return nil, err
	}

	audits, err := u.audits.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderAuditOutput, 0, len(audits))
	for _, a := range audits {
		outs = append(outs, OrderAuditOutput{
			ActorType:       string(a.ActorType),
			FromStatus:      string(a.FromStatus),
			ToStatus:        string(a.ToStatus),
			FromRiderStatus: riderStatusString(a.FromRiderStatus),
			ToRiderStatus:   riderStatusString(a.ToRiderStatus),
			CreatedAt:       a.CreatedAt,
		})
	}
	return outs, nil
}

func (u *OrderUsecase) findVisible(ctx context.Context, actor lifecycle.Actor, orderID string) (model.Order, error) {
	if actor.ID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	switch actor.Type {
	case model.UserTypeCustomer:
		if o.CustomerID != actor.ID {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
		}
	case model.UserTypeStore:
		store, err := u.storeOf(ctx, actor.ID)
		if err != nil {
			return model.Order{}, err
		}
		if o.StoreID != store.ID {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
		}
	case model.UserTypeRider:
		//担当ライダーのほか、未割当readyはフィードから見えるので詳細も見せる
		assigned := o.RiderID != nil && *o.RiderID == actor.ID
		claimable := o.Status == model.OrderStatusReady && o.RiderID == nil
		if !assigned && !claimable {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
		}
	default:
		return model.Order{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	return o, nil
}

func (u *OrderUsecase) storeOf(ctx context.Context, ownerID string) (model.Store, error) {
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

func (u *OrderUsecase) toOutputs(orders []model.Order, actor lifecycle.Actor) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out := toOrderOutput(o, nil)
		out.Actions = triggerNames(lifecycle.AllowedTriggers(o, actor))
		outs = append(outs, out)
	}
	return outs
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:      it.ProductID,
			Name:           it.ProductNameSnapshot,
			UnitPriceMilli: it.UnitPriceMilli,
			Qty:            it.Qty,
			SubtotalMilli:  it.SubtotalMilli,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		StoreID:       o.StoreID,
		RiderID:       o.RiderID,
		Status:        string(o.Status),
		RiderStatus:   riderStatusString(o.RiderStatus),
		TotalMilli:    o.TotalMilli,
		PaymentMethod: string(o.PaymentMethod),
		Delivery: DeliveryAddress{
			Street:     o.DeliveryStreet,
			City:       o.DeliveryCity,
			State:      o.DeliveryState,
			Zip:        o.DeliveryZip,
			Complement: o.DeliveryComplement,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Items:     outItems,
	}
}

func riderStatusString(rs *model.RiderStatus) *string {
	if rs == nil {
		return nil
	}
	s := string(*rs)
	return &s
}

func triggerNames(trgs []lifecycle.Trigger) []string {
	names := make([]string, 0, len(trgs))
	for _, t := range trgs {
		names = append(names, string(t))
	}
	return names
}
