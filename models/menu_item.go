package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/money"
)

type MenuItem struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description"`
	Price       money.Money `gorm:"not null" json:"price"` // paise
	Category    string      `gorm:"index;not null" json:"category"`
	ImageURL    string      `json:"image_url"`
	Available   bool        `gorm:"not null" json:"available"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
