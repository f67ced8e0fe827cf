package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/store"
)

type UpdateUserInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// customer returns the caller if it is a registered customer.
func customer(c *gin.Context) (auth.Identity, bool) {
	id, err := auth.FromContext(c)
	if err != nil {
		respond.Error(c, err)
		return auth.Identity{}, false
	}
	if id.Role != auth.RoleCustomer {
		respond.Error(c, apperror.New(apperror.KindForbidden, "Only registered customers have a profile"))
		return auth.Identity{}, false
	}
	return id, true
}

// GET /user
func GetUser(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customer(c)
		if !ok {
			return
		}
		user, err := users.GetUser(c.Request.Context(), id.ID)
		if err != nil {
			respond.Error(c, apperror.Transient("get user", err))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PUT /user
func UpdateUser(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customer(c)
		if !ok {
			return
		}
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}
		if input.Name != nil && *input.Name == "" {
			respond.BadRequest(c, "name cannot be empty")
			return
		}

		user, err := users.UpdateProfile(c.Request.Context(), id.ID, input.Name, input.Phone)
		if err != nil {
			respond.Error(c, apperror.Transient("update user", err))
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
