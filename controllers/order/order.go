package orderControllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/order"
)

// IdempotencyHeader carries the checkout token when the body does not.
const IdempotencyHeader = "Idempotency-Key"

// -------- Request Structs --------
type CheckoutRequest struct {
	SplitCount   int64   `json:"split_count"`
	TableNumber  *string `json:"table_number"`
	RequestToken string  `json:"request_token"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// -------- Presentation --------

type statusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// OrderView is an order with display attributes for both status axes.
type OrderView struct {
	models.Order
	Status  statusDisplay `json:"status_display"`
	Payment statusDisplay `json:"payment_display"`
}

func present(o models.Order) OrderView {
	return OrderView{
		Order:   o,
		Status:  statusDisplay{Label: o.OrderStatus.Label(), Color: o.OrderStatus.Color(), Icon: o.OrderStatus.Icon()},
		Payment: statusDisplay{Label: o.PaymentStatus.Label(), Color: o.PaymentStatus.Color(), Icon: o.PaymentStatus.Icon()},
	}
}

func presentAll(orders []models.Order) []OrderView {
	out := make([]OrderView, len(orders))
	for i, o := range orders {
		out[i] = present(o)
	}
	return out
}

// -------- Handlers --------

// POST /orders/checkout
func CheckoutHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}

		// the body is optional; an empty one means a single payer and no table
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		token := c.GetHeader(IdempotencyHeader)
		if token == "" {
			token = req.RequestToken
		}

		res, err := svc.Checkout(c.Request.Context(), id, order.CheckoutRequest{
			SplitCount:  req.SplitCount,
			TableNumber: req.TableNumber,
			Token:       token,
		})
		if err != nil {
			respond.Error(c, err)
			return
		}

		status := http.StatusCreated
		if res.Replayed {
			status = http.StatusOK
		}
		body := gin.H{
			"message":      "Order placed successfully",
			"order":        present(res.Order),
			"replayed":     res.Replayed,
			"cart_cleared": res.CartCleared,
		}
		if res.ClearErr != nil {
			body["warning"] = "Order placed but the cart could not be cleared; it will be cleared on retry"
		}
		c.JSON(status, body)
	}
}

// GET /orders
func GetMyOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return listHandler(svc, order.ScopeCustomer)
}

// GET /orders/all
func GetAllOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return listHandler(svc, order.ScopeStaff)
}

func listHandler(svc *order.Service, scope order.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		orders, err := svc.ListOrders(c.Request.Context(), id, scope)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": presentAll(orders)})
	}
}

// GET /orders/:id
func GetOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		o, err := svc.GetOrder(c.Request.Context(), id, c.Param("id"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, present(o))
	}
}

type billLine struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unit_price"`
	LineTotal money.Money `json:"line_total"`
}

// GET /orders/:id/bill
func GetBillHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		o, err := svc.GetOrder(c.Request.Context(), id, c.Param("id"))
		if err != nil {
			respond.Error(c, err)
			return
		}

		lines := make([]billLine, len(o.Items))
		for i, it := range o.Items {
			lines[i] = billLine{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice, LineTotal: it.LineTotal}
		}
		c.JSON(http.StatusOK, gin.H{
			"order_id":          o.ID,
			"items":             lines,
			"subtotal":          o.Subtotal,
			"tax":               o.Tax,
			"tax_rate_bps":      o.TaxRateBps,
			"total_amount":      o.TotalAmount,
			"split_count":       o.SplitCount,
			"per_person_amount": o.PerPersonAmount,
			"shares":            o.Shares,
			"table_number":      o.TableNumber,
			"payment_status":    o.PaymentStatus,
			"payment_display":   present(o).Payment,
		})
	}
}

// PUT /orders/:id/status
func UpdateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respond.Error(c, apperror.Wrap(apperror.KindInvalidTransition, "Invalid order status", err))
			return
		}

		o, err := svc.AdvanceOrderStatus(c.Request.Context(), c.Param("id"), status, actor)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": present(o)})
	}
}

// PUT /orders/:id/payment-status
func UpdatePaymentStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		status, err := models.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			respond.Error(c, apperror.Wrap(apperror.KindInvalidTransition, "Invalid payment status", err))
			return
		}

		o, err := svc.SetPaymentStatus(c.Request.Context(), c.Param("id"), status, actor)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": present(o)})
	}
}

// GET /orders/:id/history
func GetHistoryHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		h, err := svc.History(c.Request.Context(), id, c.Param("id"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		if h == nil {
			h = []models.OrderStatusChange{}
		}
		c.JSON(http.StatusOK, gin.H{"history": h})
	}
}
