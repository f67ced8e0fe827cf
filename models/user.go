package models

import "time"

const (
	RoleCustomer = "customer"
	RoleGuest    = "guest"
)

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email        *string    `gorm:"uniqueIndex" json:"email,omitempty"` // nil for guests
	Phone        string     `json:"phone,omitempty"`
	Name         string     `json:"name,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"type:varchar(16);not null;default:customer" json:"role"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"` // guests only
	CreatedAt    time.Time  `json:"created_at"`
}
