package menucontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/store"
)

// GET /menu/items?category=Snacks
func GetMenuItems(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := menu.ListItems(c.Request.Context(), store.MenuFilter{Category: c.Query("category")})
		if err != nil {
			respond.Error(c, apperror.Transient("list menu", err))
			return
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// GET /menu/all (staff) includes unavailable items.
func GetAllMenuItems(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := menu.ListItems(c.Request.Context(), store.MenuFilter{Category: c.Query("category"), IncludeUnavailable: true})
		if err != nil {
			respond.Error(c, apperror.Transient("list menu", err))
			return
		}
		if items == nil {
			items = []models.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// GET /menu/items/:id
func GetMenuItemByID(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := menu.GetItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			respond.Error(c, apperror.Transient("get menu item", err))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// GET /menu/categories
func GetCategories(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := menu.Categories(c.Request.Context())
		if err != nil {
			respond.Error(c, apperror.Transient("list categories", err))
			return
		}
		if cats == nil {
			cats = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	}
}
