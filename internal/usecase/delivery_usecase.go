package usecase

import (
	"context"
	"net/http"
	"time"

	"starfruit/internal/domain/lifecycle"
	"starfruit/internal/domain/model"
	"starfruit/internal/notify"
	repo "starfruit/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DeliveryUsecaseは注文の状態遷移を全部引き受ける。
// 判定はlifecycle.Apply、書き込みはrepositoryの条件付きUPDATE。
// どの遷移も「読んだスナップショットが今もDBにあること」をWHERE句で確かめるので、
// 古い画面からの二重操作はここで409になる。
type DeliveryUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	stores    repo.StoreRepository
	riders    repo.RiderProfileRepository
	publisher notify.Publisher
}

func NewDeliveryUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	stores repo.StoreRepository,
	riders repo.RiderProfileRepository,
	publisher notify.Publisher,
) *DeliveryUsecase {
	return &DeliveryUsecase{tx: tx, orders: orders, stores: stores, riders: riders, publisher: publisher}
}

// 店舗側の遷移

func (u *DeliveryUsecase) StartPreparing(ctx context.Context, ownerID string, orderID string) (OrderOutput, error) {
	return u.storeTransition(ctx, ownerID, orderID, lifecycle.TriggerStartPreparing)
}

func (u *DeliveryUsecase) MarkReady(ctx context.Context, ownerID string, orderID string) (OrderOutput, error) {
	return u.storeTransition(ctx, ownerID, orderID, lifecycle.TriggerMarkReady)
}

func (u *DeliveryUsecase) CancelByStore(ctx context.Context, ownerID string, orderID string) (OrderOutput, error) {
	return u.storeTransition(ctx, ownerID, orderID, lifecycle.TriggerCancel)
}

func (u *DeliveryUsecase) storeTransition(ctx context.Context, ownerID string, orderID string, trg lifecycle.Trigger) (OrderOutput, error) {
	store, err := u.stores.FindByOwnerID(ctx, ownerID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	actor := lifecycle.Actor{ID: ownerID, Type: model.UserTypeStore}
	return u.transition(ctx, actor, orderID, trg, func(o model.Order) error {
		//他店の注文は「存在しない扱い」
		if o.StoreID != store.ID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil
	})
}

// 顧客のキャンセル

func (u *DeliveryUsecase) CancelByCustomer(ctx context.Context, customerID string, orderID string) (OrderOutput, error) {
	actor := lifecycle.Actor{ID: customerID, Type: model.UserTypeCustomer}
	return u.transition(ctx, actor, orderID, lifecycle.TriggerCancel, func(o model.Order) error {
		if o.CustomerID != customerID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil
	})
}

// ライダー側の遷移

// Acceptは早い者勝ちの受諾。repositoryのClaimForRiderが
// status=ready AND rider_id IS NULLを条件に1回のUPDATEで書くので、
// 同時に二人が押しても勝者は必ず一人、負けた方はここで409になる。
func (u *DeliveryUsecase) Accept(ctx context.Context, riderID string, orderID string) (OrderOutput, error) {
	if riderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	profile, err := u.riders.GetOrCreate(ctx, riderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !profile.Available {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "rider unavailable")
	}

	o, err := u.findOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}

	actor := lifecycle.Actor{ID: riderID, Type: model.UserTypeRider}
	next, err := lifecycle.Apply(o, lifecycle.TriggerAcceptDelivery, actor)
	if err != nil {
		return OrderOutput{}, transitionError(err)
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().ClaimForRider(ctx, orderID, riderID); err != nil {
			return err
		}
		return r.Audits().Create(ctx, newAudit(o, next, actor))
	})
	if err == repo.ErrConflict {
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "delivery no longer available")
	}
	if err != nil {
		if he, ok := AsHTTPError(err); ok {
			return OrderOutput{}, he
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.publish(ctx, o, next)
	return toOrderOutput(next, nil), nil
}

func (u *DeliveryUsecase) ArriveAtStore(ctx context.Context, riderID string, orderID string) (OrderOutput, error) {
	return u.riderTransition(ctx, riderID, orderID, lifecycle.TriggerArriveAtStore)
}

func (u *DeliveryUsecase) DepartToCustomer(ctx context.Context, riderID string, orderID string) (OrderOutput, error) {
	return u.riderTransition(ctx, riderID, orderID, lifecycle.TriggerDepartToCustomer)
}

func (u *DeliveryUsecase) Complete(ctx context.Context, riderID string, orderID string) (OrderOutput, error) {
	return u.riderTransition(ctx, riderID, orderID, lifecycle.TriggerCompleteDelivery)
}

func (u *DeliveryUsecase) riderTransition(ctx context.Context, riderID string, orderID string, trg lifecycle.Trigger) (OrderOutput, error) {
	//担当チェックはlifecycle.Applyが見る
	actor := lifecycle.Actor{ID: riderID, Type: model.UserTypeRider}
	return u.transition(ctx, actor, orderID, trg, func(model.Order) error { return nil })
}

// 受けられる配達のフィード（ready・未割当）
func (u *DeliveryUsecase) ListAvailable(ctx context.Context, riderID string) ([]OrderOutput, error) {
	if riderID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orders, err := u.orders.ListReadyUnassigned(ctx, listLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	actor := lifecycle.Actor{ID: riderID, Type: model.UserTypeRider}
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out := toOrderOutput(o, nil)
		out.Actions = triggerNames(lifecycle.AllowedTriggers(o, actor))
		outs = append(outs, out)
	}
	return outs, nil
}

// 自分が運んでいる／運んだ配達
func (u *DeliveryUsecase) ListMine(ctx context.Context, riderID string, statusIn []model.OrderStatus) ([]OrderOutput, error) {
	if riderID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orders, err := u.orders.ListByRider(ctx, riderID, statusIn, listLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	actor := lifecycle.Actor{ID: riderID, Type: model.UserTypeRider}
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		out := toOrderOutput(o, nil)
		out.Actions = triggerNames(lifecycle.AllowedTriggers(o, actor))
		outs = append(outs, out)
	}
	return outs, nil
}

// transitionは読んで・判定して・条件付きで書く、の共通経路。
// scopeCheckで当事者以外を落としてからApplyする。
func (u *DeliveryUsecase) transition(ctx context.Context, actor lifecycle.Actor, orderID string, trg lifecycle.Trigger, scopeCheck func(model.Order) error) (OrderOutput, error) {
	if actor.ID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	o, err := u.findOrder(ctx, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if err := scopeCheck(o); err != nil {
		return OrderOutput{}, err
	}

	next, err := lifecycle.Apply(o, trg, actor)
	if err != nil {
		return OrderOutput{}, transitionError(err)
	}
	next.UpdatedAt = time.Now()

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().ApplyTransition(ctx, o, next); err != nil {
			return err
		}
		return r.Audits().Create(ctx, newAudit(o, next, actor))
	})
	if err == repo.ErrConflict {
		//読んでから書くまでの間に他のアクターが動かした
		return OrderOutput{}, NewHTTPError(http.StatusConflict, "order changed, refresh and retry")
	}
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.publish(ctx, o, next)
	return toOrderOutput(next, nil), nil
}

func (u *DeliveryUsecase) findOrder(ctx context.Context, orderID string) (model.Order, error) {
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
	return o, nil
}

func (u *DeliveryUsecase) publish(ctx context.Context, old, next model.Order) {
	if err := u.publisher.PublishOrderChange(ctx, old, next); err != nil {
		//通知は配達を止めない。リレー側のポーリングやSSE再接続が拾い直す。
		log.Warn().Err(err).Str("order_id", next.ID).Msg("order change publish failed")
	}
}

func newAudit(old, next model.Order, actor lifecycle.Actor) model.OrderAudit {
	return model.OrderAudit{
		ID:              uuid.NewString(),
		OrderID:         next.ID,
		ActorID:         actor.ID,
		ActorType:       actor.Type,
		FromStatus:      old.Status,
		ToStatus:        next.Status,
		FromRiderStatus: old.RiderStatus,
		ToRiderStatus:   next.RiderStatus,
	}
}

func transitionError(err error) error {
	switch err {
	case lifecycle.ErrWrongActor:
		return NewHTTPError(http.StatusForbidden, "forbidden")
	case lifecycle.ErrInvalidTransition:
		return NewHTTPError(http.StatusConflict, "transition not allowed from current state")
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
