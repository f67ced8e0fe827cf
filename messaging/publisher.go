package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/junaidrashid-git/canteen-api/order"
)

// Sender is the publishing half of Client.
type Sender interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// EventPublisher sends order events to a fanout exchange.
type EventPublisher struct {
	sender   Sender
	exchange string
}

func NewEventPublisher(sender Sender, exchange string) *EventPublisher {
	return &EventPublisher{sender: sender, exchange: exchange}
}

func (p *EventPublisher) Publish(ctx context.Context, e order.Event) error {
	msg, err := encodeEvent(e)
	if err != nil {
		return err
	}
	// fanout ignores the routing key; it is set for bindings that switch to topic
	return p.sender.Publish(ctx, p.exchange, e.Type, msg)
}

func encodeEvent(e order.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: e.OrderID,
		Type:          e.Type,
		Timestamp:     e.At.UTC(),
		Headers: amqp.Table{
			"x-source": "canteen-api",
			"x-actor":  e.Actor,
		},
		Body: body,
	}, nil
}
