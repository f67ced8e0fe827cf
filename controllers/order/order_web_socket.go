package orderControllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/order"
	"github.com/junaidrashid-git/canteen-api/ordersync"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BoardMessage is one frame pushed to a live order board.
type BoardMessage struct {
	Type      string      `json:"type"` // "orders" or "error"
	Seq       uint64      `json:"seq,omitempty"`
	FetchedAt *time.Time  `json:"fetched_at,omitempty"`
	Orders    []OrderView `json:"orders"`
	Error     string      `json:"error,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// GET /orders/ws?token=...&scope=staff
//
// Each socket polls its own order scope and pushes the whole view after every
// successful poll. A failed poll sends an error frame and the board keeps
// showing the previous view. Closing the socket stops the polling.
func OrderWebSocketHandler(svc *order.Service, interval time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		scope := order.ScopeCustomer
		if c.Query("scope") == "staff" {
			if !id.IsStaff() {
				respond.Error(c, apperror.New(apperror.KindForbidden, "Staff access required"))
				return
			}
			scope = order.ScopeStaff
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		var mu sync.Mutex
		send := func(m BoardMessage) {
			mu.Lock()
			defer mu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				cancel()
			}
		}

		board := ordersync.New(
			func(ctx context.Context) ([]models.Order, error) {
				return svc.ListOrders(ctx, id, scope)
			},
			interval,
			log.With(zap.String("user_id", id.ID)),
			ordersync.WithOnUpdate(func(v ordersync.View) {
				at := v.FetchedAt
				send(BoardMessage{Type: "orders", Seq: v.Seq, FetchedAt: &at, Orders: presentAll(v.Orders)})
			}),
			ordersync.WithOnError(func(err error) {
				send(BoardMessage{
					Type:      "error",
					Error:     "Could not refresh orders, showing the last known state",
					Retryable: apperror.Retryable(err),
				})
			}),
		)

		// The read loop only detects the client going away.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		log.Debug("order board connected", zap.String("user_id", id.ID), zap.Bool("staff", scope == order.ScopeStaff))
		_ = board.Run(ctx)
	}
}
