package model

import "time"

type Product struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID    string    `gorm:"type:uuid;not null;index" json:"store_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	PriceMilli int64     `gorm:"not null" json:"price_milli"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
