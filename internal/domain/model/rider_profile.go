package model

import "time"

// ライダーのプロフィール。Availableが新規配達を受けられるかのフラグ。
// CNH（運転免許）の期限は警告表示のみで、配達受諾のブロックはしない。
type RiderProfile struct {
	UserID       string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	Available    bool       `gorm:"not null;default:true" json:"available"`
	CNHNumber    string     `gorm:"column:cnh_number;type:varchar(30)" json:"cnh_number"`
	CNHCategory  string     `gorm:"column:cnh_category;type:varchar(5)" json:"cnh_category"`
	CNHExpiry    *time.Time `gorm:"column:cnh_expiry" json:"cnh_expiry"`
	VehicleType  string     `gorm:"type:varchar(30)" json:"vehicle_type"`
	VehiclePlate string     `gorm:"type:varchar(10)" json:"vehicle_plate"`
	City         string     `gorm:"type:varchar(255)" json:"city"`
	State        string     `gorm:"type:varchar(100)" json:"state"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 期限切れか
func (p RiderProfile) CNHExpired(now time.Time) bool {
	return p.CNHExpiry != nil && p.CNHExpiry.Before(now)
}

// 90日以内に期限が来るか
func (p RiderProfile) CNHExpiringSoon(now time.Time) bool {
	return p.CNHExpiry != nil && p.CNHExpiry.Before(now.Add(90*24*time.Hour))
}
