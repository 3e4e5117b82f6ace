package usecase

import (
	"context"
	"testing"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func deliveryFixture() (*DeliveryUsecase, *OrderRepoMock, *StoreRepoMock, *RiderProfileRepoMock, *AuditRepoMock, *PublisherSpy) {
	orders := new(OrderRepoMock)
	stores := new(StoreRepoMock)
	riders := new(RiderProfileRepoMock)
	items := new(OrderItemRepoMock)
	audits := new(AuditRepoMock)
	pub := new(PublisherSpy)

	tx := newTxManagerFake(orders, items, audits)
	uc := NewDeliveryUsecase(tx, orders, stores, riders, pub)
	return uc, orders, stores, riders, audits, pub
}

func rsp(rs model.RiderStatus) *model.RiderStatus { return &rs }
func sp(s string) *string                         { return &s }

func TestDelivery_StartPreparing(t *testing.T) {
	ctx := context.Background()
	uc, orders, stores, _, audits, pub := deliveryFixture()

	stores.On("FindByOwnerID", mock.Anything, "owner-1").Return(model.Store{ID: "store-1", OwnerID: "owner-1"}, nil)
	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", CustomerID: "cust-1", StoreID: "store-1", Status: model.OrderStatusPending,
	}, nil)
	orders.On("ApplyTransition", mock.Anything, mock.Anything, mock.MatchedBy(func(next model.Order) bool {
		return next.Status == model.OrderStatusPreparing
	})).Return(nil)
	audits.On("Create", mock.Anything, mock.MatchedBy(func(a model.OrderAudit) bool {
		return a.FromStatus == model.OrderStatusPending && a.ToStatus == model.OrderStatusPreparing &&
			a.ActorType == model.UserTypeStore
	})).Return(nil)

	out, err := uc.StartPreparing(ctx, "owner-1", "order-1")
	assert.NoError(t, err)
	assert.Equal(t, "preparing", out.Status)
	assert.Len(t, pub.events, 1)

	audits.AssertExpectations(t)
}

func TestDelivery_StartPreparing_OtherStores404(t *testing.T) {
	uc, orders, stores, _, _, _ := deliveryFixture()

	stores.On("FindByOwnerID", mock.Anything, "owner-1").Return(model.Store{ID: "store-1"}, nil)
	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", StoreID: "store-9", Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.StartPreparing(context.Background(), "owner-1", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestDelivery_MarkReady_WrongStateConflicts(t *testing.T) {
	uc, orders, stores, _, _, _ := deliveryFixture()

	stores.On("FindByOwnerID", mock.Anything, "owner-1").Return(model.Store{ID: "store-1"}, nil)
	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", StoreID: "store-1", Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.MarkReady(context.Background(), "owner-1", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestDelivery_Accept(t *testing.T) {
	ctx := context.Background()
	uc, orders, _, riders, audits, pub := deliveryFixture()

	riders.On("GetOrCreate", mock.Anything, "rider-1").Return(model.RiderProfile{UserID: "rider-1", Available: true}, nil)
	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", CustomerID: "cust-1", StoreID: "store-1", Status: model.OrderStatusReady,
	}, nil)
	orders.On("ClaimForRider", mock.Anything, "order-1", "rider-1").Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Accept(ctx, "rider-1", "order-1")
	assert.NoError(t, err)
	assert.Equal(t, "on_way", out.Status)
	assert.Equal(t, "going_to_store", *out.RiderStatus)
	assert.Equal(t, "rider-1", *out.RiderID)
	assert.Len(t, pub.events, 1)
}

// 同時受諾の負け側。条件付きUPDATEがErrConflictを返してきたケース。
func TestDelivery_Accept_LoserGets409(t *testing.T) {
	uc, orders, _, riders, audits, pub := deliveryFixture()

	riders.On("GetOrCreate", mock.Anything, "rider-2").Return(model.RiderProfile{UserID: "rider-2", Available: true}, nil)
	//読んだ時点ではまだ未割当に見えた
	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", StoreID: "store-1", Status: model.OrderStatusReady,
	}, nil)
	orders.On("ClaimForRider", mock.Anything, "order-1", "rider-2").Return(repo.ErrConflict)

	_, err := uc.Accept(context.Background(), "rider-2", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
	assert.Equal(t, "delivery no longer available", he.Message)

	//負け側は履歴もイベントも残さない
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pub.events)
}

func TestDelivery_Accept_UnavailableRiderForbidden(t *testing.T) {
	uc, _, _, riders, _, _ := deliveryFixture()

	riders.On("GetOrCreate", mock.Anything, "rider-1").Return(model.RiderProfile{UserID: "rider-1", Available: false}, nil)

	_, err := uc.Accept(context.Background(), "rider-1", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 403, he.Status)
}

func TestDelivery_RiderProgression(t *testing.T) {
	ctx := context.Background()
	uc, orders, _, _, audits, _ := deliveryFixture()

	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", StoreID: "store-1", Status: model.OrderStatusOnWay,
		RiderStatus: rsp(model.RiderStatusGoingToStore), RiderID: sp("rider-1"),
	}, nil)
	orders.On("ApplyTransition", mock.Anything, mock.Anything, mock.MatchedBy(func(next model.Order) bool {
		return next.RiderStatus != nil && *next.RiderStatus == model.RiderStatusAtStore
	})).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.ArriveAtStore(ctx, "rider-1", "order-1")
	assert.NoError(t, err)
	assert.Equal(t, "at_store", *out.RiderStatus)
}

func TestDelivery_RiderProgression_WrongRiderForbidden(t *testing.T) {
	uc, orders, _, _, _, _ := deliveryFixture()

	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", Status: model.OrderStatusOnWay,
		RiderStatus: rsp(model.RiderStatusGoingToStore), RiderID: sp("rider-1"),
	}, nil)

	_, err := uc.ArriveAtStore(context.Background(), "rider-2", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 403, he.Status)
}

// 読んでから書くまでの間に他のアクターが動かしたケース。
func TestDelivery_StaleWriteConflicts(t *testing.T) {
	uc, orders, _, _, _, _ := deliveryFixture()

	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", Status: model.OrderStatusOnWay,
		RiderStatus: rsp(model.RiderStatusGoingToCustomer), RiderID: sp("rider-1"),
	}, nil)
	orders.On("ApplyTransition", mock.Anything, mock.Anything, mock.Anything).Return(repo.ErrConflict)

	_, err := uc.Complete(context.Background(), "rider-1", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestDelivery_CancelByCustomer_OwnOrderOnly(t *testing.T) {
	ctx := context.Background()
	uc, orders, _, _, audits, _ := deliveryFixture()

	orders.On("FindByID", mock.Anything, "order-1").Return(model.Order{
		ID: "order-1", CustomerID: "cust-1", Status: model.OrderStatusPreparing,
	}, nil)
	orders.On("ApplyTransition", mock.Anything, mock.Anything, mock.MatchedBy(func(next model.Order) bool {
		return next.Status == model.OrderStatusCancelled
	})).Return(nil)
	audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.CancelByCustomer(ctx, "cust-1", "order-1")
	assert.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)

	//他人の注文は404
	_, err = uc.CancelByCustomer(ctx, "cust-2", "order-1")
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestDelivery_ListAvailable(t *testing.T) {
	uc, orders, _, _, _, _ := deliveryFixture()

	orders.On("ListReadyUnassigned", mock.Anything, 50).Return([]model.Order{
		{ID: "order-1", Status: model.OrderStatusReady},
		{ID: "order-2", Status: model.OrderStatusReady},
	}, nil)

	out, err := uc.ListAvailable(context.Background(), "rider-1")
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	//フィードの各行で受諾が押せる
	assert.Contains(t, out[0].Actions, "accept_delivery")
}
