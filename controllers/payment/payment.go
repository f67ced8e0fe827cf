package paymentControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/middleware"
	"github.com/junaidrashid-git/canteen-api/order"
	"github.com/junaidrashid-git/canteen-api/payment"
)

type UPIRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	// Full asks for the whole bill instead of one payer's share.
	Full bool `json:"full"`
}

// POST /payment/upi
func CreateUPILinkHandler(svc *order.Service, upi payment.UPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		var input UPIRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, "order_id is required")
			return
		}

		o, err := svc.GetOrder(c.Request.Context(), id, input.OrderID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if o.PaymentStatus.IsResolved() {
			respond.Error(c, apperror.New(apperror.KindInvalidTransition, "Payment for this order is already "+string(o.PaymentStatus)))
			return
		}

		amount := o.PerPersonAmount
		if input.Full || o.SplitCount <= 1 {
			amount = o.TotalAmount
		}
		link, err := upi.Link(o.ID, amount)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "UPI payments are not configured"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"upi_link":    link,
			"amount":      amount,
			"upi_id":      upi.ID,
			"payee_name":  upi.Name,
			"note":        payment.Note(o.ID),
			"split_count": o.SplitCount,
		})
	}
}

// POST /payment/webhook, behind middleware.PaymentWebhookAuth.
func PaymentWebhookHandler(svc *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := middleware.Resolution(c)
		if !ok {
			respond.BadRequest(c, "missing payment notification")
			return
		}

		o, err := payment.Apply(c.Request.Context(), svc, r)
		if err != nil {
			log.Warn("payment webhook rejected", zap.String("order_id", r.OrderID), zap.String("status", r.Status), zap.Error(err))
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":        "Payment status recorded",
			"order_id":       o.ID,
			"payment_status": o.PaymentStatus,
		})
	}
}
