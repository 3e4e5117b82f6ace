package repository

import (
	"context"

	"starfruit/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByCustomer(ctx context.Context, customerID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error)
	ListByStore(ctx context.Context, storeID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error)
	ListByRider(ctx context.Context, riderID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error)
	// 未割当のready注文（ライダーの「受けられる配達」フィード）
	ListReadyUnassigned(ctx context.Context, limit int) ([]model.Order, error)
	Create(ctx context.Context, order model.Order) error

	// ClaimForRiderはstatus=readyかつrider_id IS NULLのときだけ
	// (rider_id, status=on_way, rider_status=going_to_store)を1回のUPDATEで書く。
	// 前提が崩れていたらErrConflict。二人が同時に受諾しても勝者は必ず一人。
	ClaimForRider(ctx context.Context, orderID string, riderID string) error

	// ApplyTransitionはexpected（読み取ったスナップショット）の
	// status/rider_status/rider_idをWHERE句で再チェックしながらnextを書く。
	// 前提が崩れていたらErrConflict、行が無ければErrNotFound。
	ApplyTransition(ctx context.Context, expected model.Order, next model.Order) error
}
