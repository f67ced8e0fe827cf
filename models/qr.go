package models

import (
	"time"

	"gorm.io/gorm"
)

// QRTable binds a table label to its rendered menu deep-link QR image.
type QRTable struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TableNumber string         `json:"table_number" gorm:"type:varchar(32);not null;index"`
	DeepLink    string         `json:"deep_link" gorm:"not null"`
	FileName    string         `json:"file_name" gorm:"not null"`
	FileURL     string         `json:"file_url" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
