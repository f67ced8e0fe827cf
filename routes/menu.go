package routes

import (
	"github.com/gin-gonic/gin"

	menucontroller "github.com/junaidrashid-git/canteen-api/controllers/menu"
)

// SetupMenuRoutes registers the public menu endpoints.
func SetupMenuRoutes(r *gin.Engine, d Deps) {
	menu := r.Group("/menu")
	{
		menu.GET("/items", menucontroller.GetMenuItems(d.Menu))
		menu.GET("/items/:id", menucontroller.GetMenuItemByID(d.Menu))
		menu.GET("/categories", menucontroller.GetCategories(d.Menu))
	}
}
