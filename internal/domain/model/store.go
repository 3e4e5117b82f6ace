package model

import "time"

type Store struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Street    string    `gorm:"type:varchar(255)" json:"street"`
	City      string    `gorm:"type:varchar(255)" json:"city"`
	State     string    `gorm:"type:varchar(100)" json:"state"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
