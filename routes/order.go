package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/junaidrashid-git/canteen-api/controllers/order"
	"github.com/junaidrashid-git/canteen-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(d.Tokens))
	{
		// Place an order from the caller's cart
		orders.POST("/checkout", orderControllers.CheckoutHandler(d.Orders))

		// The caller's own orders, and every order for staff
		orders.GET("", orderControllers.GetMyOrdersHandler(d.Orders))
		orders.GET("/all", middleware.RequireStaff(), orderControllers.GetAllOrdersHandler(d.Orders))

		// Websocket live order board (token may be passed as ?token=)
		orders.GET("/ws", orderControllers.OrderWebSocketHandler(d.Orders, d.Config.OrderPollInterval, d.Log))

		orders.GET("/:id", orderControllers.GetOrderHandler(d.Orders))
		orders.GET("/:id/bill", orderControllers.GetBillHandler(d.Orders))
		orders.GET("/:id/history", orderControllers.GetHistoryHandler(d.Orders))

		// Staff status changes
		orders.PUT("/:id/status", middleware.RequireStaff(), orderControllers.UpdateOrderStatusHandler(d.Orders))
		orders.PUT("/:id/payment-status", middleware.RequireStaff(), orderControllers.UpdatePaymentStatusHandler(d.Orders))
	}
}
