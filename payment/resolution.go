package payment

import (
	"context"
	"strings"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/models"
)

// Resolution is a payment outcome reported for one order.
type Resolution struct {
	OrderID string `json:"order_id" form:"order_id"`
	Status  string `json:"status" form:"status"`
	Amount  string `json:"amount,omitempty" form:"amount"`
	TxnRef  string `json:"txn_ref,omitempty" form:"txn_ref"`
}

// Field returns a signed field by name.
func (r Resolution) Field(name string) string {
	switch name {
	case "order_id":
		return r.OrderID
	case "status":
		return r.Status
	case "amount":
		return r.Amount
	case "txn_ref":
		return r.TxnRef
	}
	return ""
}

type StatusSetter interface {
	SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus, actor auth.Identity) (models.Order, error)
}

// Apply records r as the payment actor. Only resolved outcomes are accepted.
func Apply(ctx context.Context, orders StatusSetter, r Resolution) (models.Order, error) {
	if strings.TrimSpace(r.OrderID) == "" {
		return models.Order{}, apperror.New(apperror.KindInvalidInput, "order_id is required")
	}
	status, err := models.ParsePaymentStatus(r.Status)
	if err != nil {
		return models.Order{}, apperror.Wrap(apperror.KindInvalidInput, "unknown payment status", err)
	}
	if !status.IsResolved() {
		return models.Order{}, apperror.New(apperror.KindInvalidInput, "payment status must be paid or failed")
	}
	return orders.SetPaymentStatus(ctx, r.OrderID, status, auth.PaymentActor)
}
