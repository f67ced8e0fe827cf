package order

import (
	"context"
	"time"

	"github.com/junaidrashid-git/canteen-api/models"
)

const (
	EventOrderPlaced    = "order.placed"
	EventStatusChanged  = "order.status_changed"
	EventPaymentChanged = "order.payment_changed"
)

// Event describes one change to an order. From is empty for order.placed.
type Event struct {
	Type    string        `json:"type"`
	OrderID string        `json:"order_id"`
	UserID  string        `json:"user_id"`
	From    string        `json:"from,omitempty"`
	To      string        `json:"to,omitempty"`
	Actor   string        `json:"actor"`
	Order   *models.Order `json:"order,omitempty"`
	At      time.Time     `json:"at"`
}

// Publisher fans order events out to other services.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
