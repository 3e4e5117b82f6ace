package model

import "time"

// 遷移1回につき1行の履歴。誰がどの状態からどの状態へ動かしたか。
type OrderAudit struct {
	ID              string       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         string       `gorm:"type:uuid;not null;index" json:"order_id"`
	ActorID         string       `gorm:"type:uuid;not null" json:"actor_id"`
	ActorType       UserType     `gorm:"type:varchar(20);not null" json:"actor_type"`
	FromStatus      OrderStatus  `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus        OrderStatus  `gorm:"type:varchar(20);not null" json:"to_status"`
	FromRiderStatus *RiderStatus `gorm:"type:varchar(30)" json:"from_rider_status"`
	ToRiderStatus   *RiderStatus `gorm:"type:varchar(30)" json:"to_rider_status"`
	CreatedAt       time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
}
