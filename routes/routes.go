package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/config"
	orderControllers "github.com/junaidrashid-git/canteen-api/controllers/order"
	"github.com/junaidrashid-git/canteen-api/logger"
	"github.com/junaidrashid-git/canteen-api/middleware"
	"github.com/junaidrashid-git/canteen-api/order"
	"github.com/junaidrashid-git/canteen-api/qr"
	"github.com/junaidrashid-git/canteen-api/store"
)

// Deps is everything the HTTP layer is wired from.
type Deps struct {
	Config config.Config
	Log    *zap.Logger
	Tokens *auth.Tokens
	Carts  *cart.Aggregator
	Orders *order.Service
	Menu   *store.MenuStore
	Users  *store.UserStore
	Tables *store.QRStore
	QRGen  *qr.Generator
}

// NewRouter builds the engine with recovery, request logging, CORS and the
// uploads directory, then registers every route group.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Gin(d.Log))

	// Menu images and QR codes are uploaded as multipart forms
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			orderControllers.IdempotencyHeader, middleware.SignatureHeader,
		},
		ExposeHeaders: []string{"Content-Length", logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// Serve uploaded images
	r.Static("/uploads", d.Config.UploadDir)

	SetupRoutes(r, d)
	return r
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// Public auth routes
	SetupAuthRoutes(r, d)

	// Public menu browsing
	SetupMenuRoutes(r, d)

	// Customer and guest routes (JWT-protected)
	SetupUserRoutes(r, d)

	// Orders, including the live board
	SetupOrderRoutes(r, d)

	// Staff-only menu and table management
	SetupStaffRoutes(r, d)

	// UPI links and payment webhook
	SetupPaymentRoutes(r, d)
}
