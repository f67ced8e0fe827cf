package models

import (
	"time"

	"github.com/junaidrashid-git/canteen-api/money"
)

// Order is the immutable record produced by checkout. Only the two status
// axes and Version change after creation.
type Order struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string        `gorm:"index;not null;uniqueIndex:idx_orders_user_token" json:"user_id"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        money.Money   `json:"subtotal"`
	Tax             money.Money   `json:"tax"`
	TaxRateBps      int64         `json:"tax_rate_bps"`
	TotalAmount     money.Money   `json:"total_amount"`
	SplitCount      int64         `gorm:"not null;default:1" json:"split_count"`
	PerPersonAmount money.Money   `json:"per_person_amount"` // largest share
	Shares          []money.Money `gorm:"serializer:json" json:"shares"`
	TableNumber     *string       `gorm:"type:varchar(32)" json:"table_number,omitempty"`
	OrderStatus     OrderStatus   `gorm:"type:varchar(20);not null;index" json:"order_status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	CheckoutToken   string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_user_token" json:"-"`
	CartCleared     bool          `gorm:"not null;default:false" json:"-"`
	Version         int64         `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem is a line captured at order time. Later menu edits never touch it.
type OrderItem struct {
	ID         uint        `gorm:"primaryKey" json:"-"`
	OrderID    string      `gorm:"index;type:varchar(36)" json:"-"`
	MenuItemID string      `gorm:"type:varchar(36)" json:"menu_item_id"`
	Name       string      `json:"name"`
	UnitPrice  money.Money `json:"unit_price"`
	Quantity   int         `json:"quantity"`
	LineTotal  money.Money `json:"line_total"`
	Position   int         `json:"-"`
}

// Status axes recorded in OrderStatusChange.Axis.
const (
	AxisOrder   = "order"
	AxisPayment = "payment"
)

// OrderStatusChange is one appended history row.
type OrderStatusChange struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"index;type:varchar(36);not null" json:"order_id"`
	Axis      string    `gorm:"type:varchar(10);not null" json:"axis"`
	From      string    `gorm:"type:varchar(20)" json:"from"`
	To        string    `gorm:"type:varchar(20);not null" json:"to"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"at"`
}
