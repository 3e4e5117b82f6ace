package model

import "time"

type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeStore    UserType = "store"
	UserTypeRider    UserType = "rider"
)

func ValidUserType(t UserType) bool {
	switch t {
	case UserTypeCustomer, UserTypeStore, UserTypeRider:
		return true
	}
	return false
}

type User struct {
	ID           string   `gorm:"type:uuid;primaryKey"`
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"column:password_hash;not null"`
	UserType     UserType `gorm:"type:varchar(20);not null"`
	FullName     string   `gorm:"type:varchar(255)"`
	Phone        string   `gorm:"type:varchar(30)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
