package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusOnWay     OrderStatus = "on_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// RiderStatusはstatus=on_wayの間だけ意味を持つ配達サブステート
type RiderStatus string

const (
	RiderStatusGoingToStore    RiderStatus = "going_to_store"
	RiderStatusAtStore         RiderStatus = "at_store"
	RiderStatusGoingToCustomer RiderStatus = "going_to_customer"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentPix        PaymentMethod = "pix"
	PaymentCash       PaymentMethod = "cash"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentCash:
		return true
	}
	return false
}

// 注文は必ず1店舗に属する。複数店舗のカートは店舗ごとに別注文になる。
// 配送先はスナップショット（注文後に住所を編集しても変わらない）。
type Order struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID    string        `gorm:"type:uuid;not null;index" json:"customer_id"`
	StoreID       string        `gorm:"type:uuid;not null;index" json:"store_id"`
	RiderID       *string       `gorm:"type:uuid;index" json:"rider_id"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	RiderStatus   *RiderStatus  `gorm:"type:varchar(30)" json:"rider_status"`
	TotalMilli    int64         `gorm:"not null" json:"total_milli"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`

	DeliveryStreet     string `gorm:"type:varchar(255)" json:"delivery_street"`
	DeliveryCity       string `gorm:"type:varchar(255)" json:"delivery_city"`
	DeliveryState      string `gorm:"type:varchar(100)" json:"delivery_state"`
	DeliveryZip        string `gorm:"type:varchar(20)" json:"delivery_zip"`
	DeliveryComplement string `gorm:"type:varchar(255)" json:"delivery_complement"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 終端ステータスか
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
