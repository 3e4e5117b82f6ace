package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"starfruit/internal/domain/model"
	"starfruit/internal/notify"
	repo "starfruit/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CheckoutUsecaseはカートを店舗ごとに分割して注文化する。
// 店舗間はアトミックにしない：1店舗1トランザクションで、失敗した店舗の分だけ
// 注文にならず、成功した分はそのまま生きる。レスポンスで成否を店舗ごとに返す。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartRepository
	cart      *CartUsecase
	addresses repo.AddressRepository
	stores    repo.StoreRepository
	publisher notify.Publisher
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cart *CartUsecase,
	addresses repo.AddressRepository,
	stores repo.StoreRepository,
	publisher notify.Publisher,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		carts:     carts,
		cart:      cart,
		addresses: addresses,
		stores:    stores,
		publisher: publisher,
	}
}

type CheckoutInput struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

type CheckoutFailure struct {
	StoreID string `json:"store_id"`
	Reason  string `json:"reason"`
}

type CheckoutResponse struct {
	Orders  []OrderOutput     `json:"orders"`
	Failed  []CheckoutFailure `json:"failed"`
	Message string            `json:"message"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, customerID string, in CheckoutInput) (CheckoutResponse, error) {
	if customerID == "" {
		return CheckoutResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//前提チェックは書き込みの前に全部やる
	pm := model.PaymentMethod(in.PaymentMethod)
	if !model.ValidPaymentMethod(pm) {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	if in.AddressID == "" {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}

	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err == repo.ErrNotFound {
		return CheckoutResponse{}, NewHTTPError(http.StatusNotFound, "address not found")
	}
	if err != nil {
		return CheckoutResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の住所なら403
	if addr.UserID != customerID {
		return CheckoutResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	items, err := u.cart.loadItems(ctx, customerID)
	if err != nil {
		return CheckoutResponse{}, err
	}
	if len(items) == 0 {
		return CheckoutResponse{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//店舗ごとに分割（カート内の出現順を保つ）
	groups := partitionByStore(items)

	res := CheckoutResponse{
		Orders: make([]OrderOutput, 0, len(groups)),
		Failed: make([]CheckoutFailure, 0),
	}

	for _, g := range groups {
		out, err := u.placeStoreOrder(ctx, customerID, pm, addr, g)
		if err != nil {
			log.Warn().Err(err).Str("store_id", g.storeID).Str("customer_id", customerID).Msg("store order failed")
			res.Failed = append(res.Failed, CheckoutFailure{StoreID: g.storeID, Reason: failureReason(err)})
			continue
		}
		res.Orders = append(res.Orders, out)
	}

	//1件でも成功していればカートは消す
	if len(res.Orders) > 0 {
		if err := u.carts.DeleteSnapshot(ctx, customerID); err != nil {
			log.Error().Err(err).Str("customer_id", customerID).Msg("cart clear after checkout failed")
		}
	}

	res.Message = fmt.Sprintf("%d orders created, %d failed", len(res.Orders), len(res.Failed))
	return res, nil
}

type storeGroup struct {
	storeID string
	items   []model.CartItem
}

func partitionByStore(items []model.CartItem) []storeGroup {
	byStore := make(map[string]int)
	groups := make([]storeGroup, 0, 2)
	for _, it := range items {
		idx, ok := byStore[it.StoreID]
		if !ok {
			idx = len(groups)
			byStore[it.StoreID] = idx
			groups = append(groups, storeGroup{storeID: it.StoreID})
		}
		groups[idx].items = append(groups[idx].items, it)
	}
	return groups
}

// placeStoreOrderは1店舗分の注文＋明細を1トランザクションで作る。
func (u *CheckoutUsecase) placeStoreOrder(ctx context.Context, customerID string, pm model.PaymentMethod, addr model.Address, g storeGroup) (OrderOutput, error) {
	store, err := u.stores.FindByID(ctx, g.storeID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, fmt.Errorf("store not found")
	}
	if err != nil {
		return OrderOutput{}, err
	}
	if !store.Active {
		return OrderOutput{}, fmt.Errorf("store inactive")
	}

	now := time.Now()
	orderID := uuid.NewString()

	var total int64
	orderItems := make([]model.OrderItem, 0, len(g.items))
	for _, it := range g.items {
		sub := it.PriceMilli * it.Qty
		total += sub
		orderItems = append(orderItems, model.OrderItem{
			ID:                  uuid.NewString(),
			OrderID:             orderID,
			ProductID:           it.ProductID,
			ProductNameSnapshot: it.Name,
			UnitPriceMilli:      it.PriceMilli,
			Qty:                 it.Qty,
			SubtotalMilli:       sub,
			CreatedAt:           now,
		})
	}

	//配送先は注文へスナップショット（住所を後から編集しても注文は変わらない）
	order := model.Order{
		ID:                 orderID,
		CustomerID:         customerID,
		StoreID:            g.storeID,
		Status:             model.OrderStatusPending,
		TotalMilli:         total,
		PaymentMethod:      pm,
		DeliveryStreet:     addr.Street,
		DeliveryCity:       addr.City,
		DeliveryState:      addr.State,
		DeliveryZip:        addr.Zip,
		DeliveryComplement: addr.Complement,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		return r.OrderItems().CreateBulk(ctx, orderID, orderItems)
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//店舗画面のポーリングが拾うほか、将来の店舗向けpush用に流しておく
	if pubErr := u.publisher.PublishOrderChange(ctx, model.Order{}, order); pubErr != nil {
		log.Warn().Err(pubErr).Str("order_id", orderID).Msg("order created event publish failed")
	}

	return toOrderOutput(order, orderItems), nil
}

func failureReason(err error) string {
	switch err.Error() {
	case "store not found", "store inactive":
		return err.Error()
	}
	return "db error"
}
