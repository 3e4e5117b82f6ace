package model

import "time"

// 配送先住所。注文時にordersへスナップショットされるので、
// ここを後から編集しても進行中の注文には影響しない。
type Address struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Label      string    `gorm:"type:varchar(100)" json:"label"`
	Street     string    `gorm:"type:varchar(255);not null" json:"street"`
	City       string    `gorm:"type:varchar(255);not null" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	Zip        string    `gorm:"type:varchar(20)" json:"zip"`
	Complement string    `gorm:"type:varchar(255)" json:"complement"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
