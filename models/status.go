package models

import (
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists the fulfilment states in order.
var OrderStatuses = []OrderStatus{
	OrderStatusPlaced, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPlaced, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// Next returns the immediate successor. ok is false at delivered.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case OrderStatusPlaced:
		return OrderStatusPreparing, true
	case OrderStatusPreparing:
		return OrderStatusReady, true
	case OrderStatusReady:
		return OrderStatusDelivered, true
	case OrderStatusDelivered:
		return "", false
	}
	panic(fmt.Sprintf("models: unknown order status %q", string(s)))
}

func (s OrderStatus) IsTerminal() bool {
	_, ok := s.Next()
	return !ok
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPlaced:
		return "Order Placed"
	case OrderStatusPreparing:
		return "Preparing"
	case OrderStatusReady:
		return "Ready for Pickup"
	case OrderStatusDelivered:
		return "Delivered"
	}
	panic(fmt.Sprintf("models: unknown order status %q", string(s)))
}

func (s OrderStatus) Color() string {
	switch s {
	case OrderStatusPlaced:
		return "#FF9800"
	case OrderStatusPreparing:
		return "#2196F3"
	case OrderStatusReady:
		return "#4CAF50"
	case OrderStatusDelivered:
		return "#9E9E9E"
	}
	panic(fmt.Sprintf("models: unknown order status %q", string(s)))
}

func (s OrderStatus) Icon() string {
	switch s {
	case OrderStatusPlaced:
		return "📝"
	case OrderStatusPreparing:
		return "👨‍🍳"
	case OrderStatusReady:
		return "✅"
	case OrderStatusDelivered:
		return "🎉"
	}
	panic(fmt.Sprintf("models: unknown order status %q", string(s)))
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus also accepts "success", which older clients send for paid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "success":
		return PaymentStatusPaid, nil
	case string(PaymentStatusPending), string(PaymentStatusPaid), string(PaymentStatusFailed):
		return PaymentStatus(v), nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

// IsResolved reports whether the payment reached paid or failed.
func (s PaymentStatus) IsResolved() bool {
	switch s {
	case PaymentStatusPending:
		return false
	case PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	panic(fmt.Sprintf("models: unknown payment status %q", string(s)))
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "Payment Pending"
	case PaymentStatusPaid:
		return "Paid"
	case PaymentStatusFailed:
		return "Payment Failed"
	}
	panic(fmt.Sprintf("models: unknown payment status %q", string(s)))
}

func (s PaymentStatus) Color() string {
	switch s {
	case PaymentStatusPending:
		return "#FFC107"
	case PaymentStatusPaid:
		return "#4CAF50"
	case PaymentStatusFailed:
		return "#F44336"
	}
	panic(fmt.Sprintf("models: unknown payment status %q", string(s)))
}

func (s PaymentStatus) Icon() string {
	switch s {
	case PaymentStatusPending:
		return "⏳"
	case PaymentStatusPaid:
		return "✅"
	case PaymentStatusFailed:
		return "❌"
	}
	panic(fmt.Sprintf("models: unknown payment status %q", string(s)))
}
