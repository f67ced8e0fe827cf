package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/payment"
)

const (
	SignatureHeader  = "X-Payment-Signature"
	resolutionCtxKey = "payment_resolution"
)

// PaymentWebhookAuth binds the payment notification and verifies its sha1
// signature. Sandbox mode skips the check.
func PaymentWebhookAuth(secret string, sandbox bool, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		var r payment.Resolution
		if err := c.ShouldBind(&r); err != nil {
			respond.AbortError(c, apperror.Wrap(apperror.KindInvalidInput, "failed to parse payment notification", err))
			return
		}

		if sandbox {
			log.Debug("sandbox mode: skipping payment webhook signature verification", zap.String("order_id", r.OrderID))
		} else {
			provided := c.GetHeader(SignatureHeader)
			if provided == "" {
				provided = c.PostForm("signature")
			}
			if provided == "" {
				respond.AbortError(c, apperror.New(apperror.KindForbidden, "missing webhook signature"))
				return
			}
			if !payment.Verify(secret, provided, r.Field) {
				log.Warn("payment webhook signature mismatch", zap.String("order_id", r.OrderID))
				respond.AbortError(c, apperror.New(apperror.KindForbidden, "invalid webhook signature"))
				return
			}
		}

		c.Set(resolutionCtxKey, r)
		c.Next()
	}
}

// Resolution returns the notification bound by PaymentWebhookAuth.
func Resolution(c *gin.Context) (payment.Resolution, bool) {
	v, ok := c.Get(resolutionCtxKey)
	if !ok {
		return payment.Resolution{}, false
	}
	r, ok := v.(payment.Resolution)
	return r, ok
}
