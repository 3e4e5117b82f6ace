package lifecycle

import (
	"testing"

	"starfruit/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestDetectMilestone_FiresOncePerTransition(t *testing.T) {
	old := orderWith(model.OrderStatusPreparing, nil, nil)
	new := orderWith(model.OrderStatusReady, nil, nil)

	ms, ok := DetectMilestone(old, new)
	assert.True(t, ok)
	assert.Equal(t, MilestoneReady, ms)

	//同じイメージをもう一度流しても発火しない
	_, ok = DetectMilestone(new, new)
	assert.False(t, ok)
}

func TestDetectMilestone_AcceptCountsAsGoingToStore(t *testing.T) {
	old := orderWith(model.OrderStatusReady, nil, nil)
	new := orderWith(model.OrderStatusOnWay, rsPtr(model.RiderStatusGoingToStore), strPtr("rider-1"))

	ms, ok := DetectMilestone(old, new)
	assert.True(t, ok)
	assert.Equal(t, MilestoneGoingToStore, ms)
}

func TestDetectMilestone_RiderSubStates(t *testing.T) {
	old := orderWith(model.OrderStatusOnWay, rsPtr(model.RiderStatusGoingToStore), strPtr("rider-1"))
	new := orderWith(model.OrderStatusOnWay, rsPtr(model.RiderStatusAtStore), strPtr("rider-1"))

	ms, ok := DetectMilestone(old, new)
	assert.True(t, ok)
	assert.Equal(t, MilestoneAtStore, ms)

	old = new
	new = orderWith(model.OrderStatusOnWay, rsPtr(model.RiderStatusGoingToCustomer), strPtr("rider-1"))
	ms, ok = DetectMilestone(old, new)
	assert.True(t, ok)
	assert.Equal(t, MilestoneGoingToCustomer, ms)
}

func TestDetectMilestone_Delivered(t *testing.T) {
	old := orderWith(model.OrderStatusOnWay, rsPtr(model.RiderStatusGoingToCustomer), strPtr("rider-1"))
	new := orderWith(model.OrderStatusDelivered, nil, strPtr("rider-1"))

	ms, ok := DetectMilestone(old, new)
	assert.True(t, ok)
	assert.Equal(t, MilestoneDelivered, ms)
}

func TestDetectMilestone_NonMilestoneChanges(t *testing.T) {
	//pending→preparingは顧客通知の節目ではない
	_, ok := DetectMilestone(
		orderWith(model.OrderStatusPending, nil, nil),
		orderWith(model.OrderStatusPreparing, nil, nil),
	)
	assert.False(t, ok)

	//キャンセルも節目扱いしない
	_, ok = DetectMilestone(
		orderWith(model.OrderStatusPreparing, nil, nil),
		orderWith(model.OrderStatusCancelled, nil, nil),
	)
	assert.False(t, ok)

	//無関係なフィールドだけの更新
	a := orderWith(model.OrderStatusPreparing, nil, nil)
	b := a
	b.TotalMilli = 9999
	_, ok = DetectMilestone(a, b)
	assert.False(t, ok)
}
