package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/junaidrashid-git/canteen-api/controllers/cart"
	userControllers "github.com/junaidrashid-git/canteen-api/controllers/user"
	"github.com/junaidrashid-git/canteen-api/middleware"
)

// SetupUserRoutes registers the profile and cart endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	tax := d.Orders.TaxRateBps()

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(d.Tokens))
	{
		userGroup.GET("", userControllers.GetUser(d.Users))
		userGroup.PUT("", userControllers.UpdateUser(d.Users))
	}

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken(d.Tokens))
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts, tax))
		cartGroup.DELETE("", cartControllers.ClearCart(d.Carts))
		cartGroup.GET("/totals", cartControllers.GetTotals(d.Carts, tax))
		cartGroup.POST("/items", cartControllers.AddItem(d.Carts, tax))
		cartGroup.PUT("/items/:id", cartControllers.SetQuantity(d.Carts, tax))
		cartGroup.DELETE("/items/:id", cartControllers.RemoveItem(d.Carts, tax))
		cartGroup.POST("/items/:id/increase", cartControllers.IncreaseItem(d.Carts, tax))
		cartGroup.POST("/items/:id/decrease", cartControllers.DecreaseItem(d.Carts, tax))
	}
}
