package model

import "time"

// カートの1行。同じ(product, store)への追加は数量加算になる。
type CartItem struct {
	ProductID  string `json:"product_id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	PriceMilli int64  `json:"price_milli"`
	Qty        int64  `json:"qty"`
}

// CartSnapshotはユーザーごとのカート全体をJSONで永続化する。
// ミューテーションごとに全量を書き戻し、壊れたJSONは空カートとして読み捨てる。
type CartSnapshot struct {
	UserID    string    `gorm:"type:uuid;primaryKey"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
