package notify

import (
	"context"

	"starfruit/internal/domain/model"
)

// ルーティングキーは order.updated.<customer_id>。
// リレーは order.updated.* を購読して顧客ごとに振り分ける。
const (
	RKOrderUpdatedPrefix = "order.updated."
	RKOrderUpdatedAll    = "order.updated.*"
)

// 変更イベントには旧イメージと新イメージの両方を載せる。
// 節目の検出（「実際に遷移したか」）は受信側がこの差分から判定する。
type OrderChangedEvent struct {
	Old model.Order `json:"old"`
	New model.Order `json:"new"`
}

// Usecaseが遷移のたびに叩く口。
type Publisher interface {
	PublishOrderChange(ctx context.Context, old, new model.Order) error
}

// infra/rabbit.Rabbitがそのまま満たす
type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

type EventPublisher struct {
	pub jsonPublisher
}

func NewEventPublisher(pub jsonPublisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) PublishOrderChange(ctx context.Context, old, new model.Order) error {
	return p.pub.PublishJSON(ctx, RKOrderUpdatedPrefix+new.CustomerID, OrderChangedEvent{Old: old, New: new})
}
