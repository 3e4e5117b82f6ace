package lifecycle

import "starfruit/internal/domain/model"

// 顧客通知の対象になる節目。
type Milestone string

const (
	MilestoneReady           Milestone = "ready"
	MilestoneGoingToStore    Milestone = "going_to_store"
	MilestoneAtStore         Milestone = "at_store"
	MilestoneGoingToCustomer Milestone = "going_to_customer"
	MilestoneDelivered       Milestone = "delivered"
)

// DetectMilestoneは旧イメージ→新イメージの差分から節目を1つ検出する。
// 該当フィールドが実際に変わった時だけ返すので、同じ行への無関係な更新では
// 再発火しない。
func DetectMilestone(old, new model.Order) (Milestone, bool) {
	if old.Status != new.Status {
		switch new.Status {
		case model.OrderStatusReady:
			return MilestoneReady, true
		case model.OrderStatusDelivered:
			return MilestoneDelivered, true
		case model.OrderStatusOnWay:
			// acceptはstatusとrider_statusが同時に変わる。going_to_storeとして扱う。
			if new.RiderStatus != nil && *new.RiderStatus == model.RiderStatusGoingToStore {
				return MilestoneGoingToStore, true
			}
		}
		return "", false
	}

	if !sameRiderStatus(old.RiderStatus, new.RiderStatus) && new.RiderStatus != nil {
		switch *new.RiderStatus {
		case model.RiderStatusGoingToStore:
			return MilestoneGoingToStore, true
		case model.RiderStatusAtStore:
			return MilestoneAtStore, true
		case model.RiderStatusGoingToCustomer:
			return MilestoneGoingToCustomer, true
		}
	}

	return "", false
}

func sameRiderStatus(a, b *model.RiderStatus) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
