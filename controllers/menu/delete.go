package menucontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/store"
)

// DeleteMenuItem takes the item off the menu. The row stays so past orders
// and carts still resolve it.
func DeleteMenuItem(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := menu.DisableItem(c.Request.Context(), c.Param("id")); err != nil {
			respond.Error(c, apperror.Transient("delete menu item", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
	}
}
