package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/junaidrashid-git/canteen-api/controllers/payment"
	"github.com/junaidrashid-git/canteen-api/middleware"
	"github.com/junaidrashid-git/canteen-api/payment"
)

func SetupPaymentRoutes(r *gin.Engine, d Deps) {
	upi := payment.UPI{ID: d.Config.UPIID, Name: d.Config.UPIName}

	p := r.Group("/payment")
	{
		p.POST("/upi", middleware.ValidateToken(d.Tokens), paymentControllers.CreateUPILinkHandler(d.Orders, upi))

		// Webhook endpoint: middleware handles sandbox/prod verification
		p.POST("/webhook",
			middleware.PaymentWebhookAuth(d.Config.PaymentWebhookSecret, d.Config.PaymentSandbox(), d.Log),
			paymentControllers.PaymentWebhookHandler(d.Orders, d.Log),
		)
	}
}
