package model

import "time"

// 注文明細。単価は注文時点のスナップショットで、以後の商品価格変更の影響を受けない。
type OrderItem struct {
	ID                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID             string    `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID           string    `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceMilli      int64     `gorm:"not null" json:"unit_price_milli"`
	Qty                 int64     `gorm:"not null" json:"qty"`
	SubtotalMilli       int64     `gorm:"not null" json:"subtotal_milli"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
