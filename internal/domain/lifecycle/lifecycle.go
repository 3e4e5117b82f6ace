package lifecycle

import (
	"errors"

	"starfruit/internal/domain/model"
)

// 注文／配達の状態機械。
// status:      pending → preparing → ready → on_way → delivered（cancelledは非終端から常に到達可）
// rider_status: nil → going_to_store → at_store → going_to_customer（status=on_wayの間のみ）
//
// ここは純粋な判定だけを持つ。実際の書き込みはrepository側の条件付きUPDATEが
// 同じ前提条件をWHERE句で再チェックするので、古いクライアント状態同士の競合は
// データ層で必ず弾かれる。

type Trigger string

const (
	TriggerStartPreparing   Trigger = "start_preparing"
	TriggerMarkReady        Trigger = "mark_ready"
	TriggerAcceptDelivery   Trigger = "accept_delivery"
	TriggerArriveAtStore    Trigger = "arrive_at_store"
	TriggerDepartToCustomer Trigger = "depart_to_customer"
	TriggerCompleteDelivery Trigger = "complete_delivery"
	TriggerCancel           Trigger = "cancel"
)

var (
	// 現在の状態からその遷移は許されない
	ErrInvalidTransition = errors.New("invalid transition")
	// そのアクター種別／本人にはその遷移の権限がない
	ErrWrongActor = errors.New("actor not allowed")
)

// 遷移を起こす主体。IDとロールを明示的に受け取る。
type Actor struct {
	ID   string
	Type model.UserType
}

// Applyは遷移後の注文を返す。oは変更しない。
func Apply(o model.Order, trg Trigger, actor Actor) (model.Order, error) {
	switch trg {
	case TriggerStartPreparing:
		if actor.Type != model.UserTypeStore {
			return o, ErrWrongActor
		}
		if o.Status != model.OrderStatusPending {
			return o, ErrInvalidTransition
		}
		o.Status = model.OrderStatusPreparing
		return o, nil

	case TriggerMarkReady:
		if actor.Type != model.UserTypeStore {
			return o, ErrWrongActor
		}
		if o.Status != model.OrderStatusPreparing {
			return o, ErrInvalidTransition
		}
		o.Status = model.OrderStatusReady
		return o, nil

	case TriggerAcceptDelivery:
		if actor.Type != model.UserTypeRider {
			return o, ErrWrongActor
		}
		if o.Status != model.OrderStatusReady || o.RiderID != nil {
			return o, ErrInvalidTransition
		}
		rid := actor.ID
		rs := model.RiderStatusGoingToStore
		o.RiderID = &rid
		o.Status = model.OrderStatusOnWay
		o.RiderStatus = &rs
		return o, nil

	case TriggerArriveAtStore:
		if err := requireAssignedRider(o, actor); err != nil {
			return o, err
		}
		if o.RiderStatus == nil || *o.RiderStatus != model.RiderStatusGoingToStore {
			return o, ErrInvalidTransition
		}
		rs := model.RiderStatusAtStore
		o.RiderStatus = &rs
		return o, nil

	case TriggerDepartToCustomer:
		if err := requireAssignedRider(o, actor); err != nil {
			return o, err
		}
		if o.RiderStatus == nil || *o.RiderStatus != model.RiderStatusAtStore {
			return o, ErrInvalidTransition
		}
		rs := model.RiderStatusGoingToCustomer
		o.RiderStatus = &rs
		return o, nil

	case TriggerCompleteDelivery:
		if err := requireAssignedRider(o, actor); err != nil {
			return o, err
		}
		if o.Status != model.OrderStatusOnWay {
			return o, ErrInvalidTransition
		}
		// rider_statusがnilのままon_wayになっている旧経路も完了を許す
		if o.RiderStatus != nil && *o.RiderStatus != model.RiderStatusGoingToCustomer {
			return o, ErrInvalidTransition
		}
		o.Status = model.OrderStatusDelivered
		o.RiderStatus = nil
		return o, nil

	case TriggerCancel:
		if actor.Type != model.UserTypeStore && actor.Type != model.UserTypeCustomer {
			return o, ErrWrongActor
		}
		if o.Status.Terminal() {
			return o, ErrInvalidTransition
		}
		o.Status = model.OrderStatusCancelled
		o.RiderStatus = nil
		return o, nil
	}

	return o, ErrInvalidTransition
}

// AllowedTriggersは現在の(status, rider_status, 担当ライダー)から
// そのアクターが実行できる遷移を返す。UI側の出し分けはこれを使うが、
// 強制の境界はあくまでApply＋データ層の条件付きUPDATE。
func AllowedTriggers(o model.Order, actor Actor) []Trigger {
	all := []Trigger{
		TriggerStartPreparing,
		TriggerMarkReady,
		TriggerAcceptDelivery,
		TriggerArriveAtStore,
		TriggerDepartToCustomer,
		TriggerCompleteDelivery,
		TriggerCancel,
	}
	allowed := make([]Trigger, 0, 2)
	for _, trg := range all {
		if _, err := Apply(o, trg, actor); err == nil {
			allowed = append(allowed, trg)
		}
	}
	return allowed
}

func requireAssignedRider(o model.Order, actor Actor) error {
	if actor.Type != model.UserTypeRider {
		return ErrWrongActor
	}
	if o.RiderID == nil || *o.RiderID != actor.ID {
		return ErrWrongActor
	}
	return nil
}
