package models

import (
	"time"

	"github.com/junaidrashid-git/canteen-api/money"
)

// Cart is the persisted line set of one identity.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	IdentityID string     `gorm:"uniqueIndex;not null" json:"identity_id"` // one cart per identity
	Lines      []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartLine struct {
	ID         uint        `gorm:"primaryKey" json:"-"`
	CartID     uint        `gorm:"index" json:"-"`
	MenuItemID string      `gorm:"type:varchar(36);not null" json:"menu_item_id"`
	Name       string      `json:"name"`
	UnitPrice  money.Money `json:"unit_price"`
	Quantity   int         `json:"quantity"`
	Position   int         `json:"-"` // insertion order
	AddedAt    time.Time   `json:"added_at"`
}

// LineTotal is UnitPrice times Quantity.
func (l CartLine) LineTotal() (money.Money, error) {
	return money.Multiply(l.UnitPrice, int64(l.Quantity))
}
