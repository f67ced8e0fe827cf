package menucontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/store"
)

// UpdateMenuItem applies the form fields that were sent. Existing orders keep
// the name and price they were placed with.
func UpdateMenuItem(menu *store.MenuStore, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u store.MenuItemUpdate

		optional := func(key string) *string {
			if v, ok := c.GetPostForm(key); ok {
				return &v
			}
			return nil
		}
		u.Name = optional("name")
		u.Description = optional("description")
		u.Category = optional("category")
		u.ImageURL = optional("image_url")

		if s := optional("price"); s != nil {
			price, err := money.Parse(*s)
			if err != nil || price == 0 {
				respond.BadRequest(c, "Invalid price")
				return
			}
			u.Price = &price
		}
		if s := optional("available"); s != nil {
			available, err := strconv.ParseBool(*s)
			if err != nil {
				respond.BadRequest(c, "Invalid available flag")
				return
			}
			u.Available = &available
		}
		if u.Name != nil && *u.Name == "" {
			respond.BadRequest(c, "name cannot be empty")
			return
		}

		imageURL, err := saveImage(c, uploadDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if imageURL != "" {
			u.ImageURL = &imageURL
		}

		item, err := menu.UpdateItem(c.Request.Context(), c.Param("id"), u)
		if err != nil {
			respond.Error(c, apperror.Transient("update menu item", err))
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
