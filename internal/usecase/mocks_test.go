package usecase

import (
	"context"

	"starfruit/internal/domain/model"
	repo "starfruit/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) LoadSnapshot(ctx context.Context, userID string) ([]byte, bool, error) {
	args := m.Called(ctx, userID)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *CartRepoMock) SaveSnapshot(ctx context.Context, userID string, data []byte) error {
	args := m.Called(ctx, userID, data)
	return args.Error(0)
}

func (m *CartRepoMock) DeleteSnapshot(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID string) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListActive(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListByStore(ctx context.Context, storeID string) ([]model.Product, error) {
	args := m.Called(ctx, storeID)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, product model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *ProductRepoMock) Update(ctx context.Context, product model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID string) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Address)
	return items, args.Error(1)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID string) error {
	args := m.Called(ctx, addressID)
	return args.Error(0)
}

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) FindByID(ctx context.Context, storeID string) (model.Store, error) {
	args := m.Called(ctx, storeID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) FindByOwnerID(ctx context.Context, ownerID string) (model.Store, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) ListActiveByCity(ctx context.Context, city string) ([]model.Store, error) {
	args := m.Called(ctx, city)
	items, _ := args.Get(0).([]model.Store)
	return items, args.Error(1)
}

func (m *StoreRepoMock) Create(ctx context.Context, store model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *StoreRepoMock) Update(ctx context.Context, store model.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByCustomer(ctx context.Context, customerID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	args := m.Called(ctx, customerID, statusIn, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) ListByStore(ctx context.Context, storeID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	args := m.Called(ctx, storeID, statusIn, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) ListByRider(ctx context.Context, riderID string, statusIn []model.OrderStatus, limit int) ([]model.Order, error) {
	args := m.Called(ctx, riderID, statusIn, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) ListReadyUnassigned(ctx context.Context, limit int) ([]model.Order, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) ClaimForRider(ctx context.Context, orderID string, riderID string) error {
	args := m.Called(ctx, orderID, riderID)
	return args.Error(0)
}

func (m *OrderRepoMock) ApplyTransition(ctx context.Context, expected model.Order, next model.Order) error {
	args := m.Called(ctx, expected, next)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, audit model.OrderAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *AuditRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderAudit, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderAudit)
	return items, args.Error(1)
}

type RiderProfileRepoMock struct{ mock.Mock }

func (m *RiderProfileRepoMock) GetOrCreate(ctx context.Context, userID string) (model.RiderProfile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.RiderProfile)
	return p, args.Error(1)
}

func (m *RiderProfileRepoMock) Update(ctx context.Context, profile model.RiderProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *RiderProfileRepoMock) SetAvailable(ctx context.Context, userID string, available bool) error {
	args := m.Called(ctx, userID, available)
	return args.Error(0)
}

// =====================
// Tx / Publisher fakes
// =====================

type txReposStub struct {
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	audits *AuditRepoMock
}

func (s txReposStub) Orders() repo.OrderRepository         { return s.orders }
func (s txReposStub) OrderItems() repo.OrderItemRepository { return s.items }
func (s txReposStub) Audits() repo.OrderAuditRepository    { return s.audits }

// fnをそのまま実行するTransactionManager。commit/rollbackは再現しない。
type TxManagerFake struct {
	repos txReposStub
}

func newTxManagerFake(orders *OrderRepoMock, items *OrderItemRepoMock, audits *AuditRepoMock) *TxManagerFake {
	return &TxManagerFake{repos: txReposStub{orders: orders, items: items, audits: audits}}
}

func (f *TxManagerFake) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(f.repos)
}

// 発行されたold/newイメージを記録するPublisher。
type PublisherSpy struct {
	events []publishedEvent
}

type publishedEvent struct {
	old model.Order
	new model.Order
}

func (p *PublisherSpy) PublishOrderChange(ctx context.Context, old, new model.Order) error {
	p.events = append(p.events, publishedEvent{old: old, new: new})
	return nil
}
