package messaging

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/payment"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// PaymentConsumer applies payment outcomes from a durable queue.
type PaymentConsumer struct {
	ch       *amqp.Channel
	queue    string
	prefetch int
	orders   payment.StatusSetter
	log      *zap.Logger
}

func NewPaymentConsumer(ch *amqp.Channel, queue string, prefetch int, orders payment.StatusSetter, log *zap.Logger) *PaymentConsumer {
	if prefetch <= 0 {
		prefetch = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentConsumer{ch: ch, queue: queue, prefetch: prefetch, orders: orders, log: log}
}

// Run consumes until ctx is done, then cancels the consumer and drains.
func (pc *PaymentConsumer) Run(ctx context.Context) error {
	closeCh := pc.ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if e := <-closeCh; e != nil {
			pc.log.Error("amqp channel closed", zap.Int("code", e.Code), zap.String("reason", e.Reason))
		}
	}()

	if _, err := pc.ch.QueueDeclare(pc.queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := pc.ch.Qos(pc.prefetch, 0, false); err != nil {
		return err
	}

	const consumerTag = "canteen-payments"
	msgs, err := pc.ch.Consume(pc.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	pc.log.Info("consuming payment outcomes", zap.String("queue", pc.queue), zap.Int("prefetch", pc.prefetch))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			err := pc.handle(ctx, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrDLQ):
				_ = d.Nack(false, false)
			default:
				_ = d.Nack(false, true)
			}
		}
	}()

	<-ctx.Done()
	_ = pc.ch.Cancel(consumerTag, false)
	<-done
	return nil
}

// handle applies one message body. Malformed or rejected outcomes are
// dead-lettered; store failures are requeued.
func (pc *PaymentConsumer) handle(ctx context.Context, body []byte) error {
	var r payment.Resolution
	if err := json.Unmarshal(body, &r); err != nil {
		pc.log.Warn("malformed payment message", zap.Error(err))
		return ErrDLQ
	}

	o, err := payment.Apply(ctx, pc.orders, r)
	if err != nil {
		if apperror.Retryable(err) {
			pc.log.Warn("payment outcome deferred", zap.String("order_id", r.OrderID), zap.Error(err))
			return ErrRequeue
		}
		pc.log.Warn("payment outcome rejected",
			zap.String("order_id", r.OrderID), zap.String("status", r.Status), zap.Error(err))
		return ErrDLQ
	}
	pc.log.Info("payment outcome applied", zap.String("order_id", o.ID), zap.String("payment_status", string(o.PaymentStatus)))
	return nil
}
