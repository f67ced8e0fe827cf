package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
)

type AddItemInput struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
}

type SetQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type cartResponse struct {
	Items  []models.CartLine `json:"items"`
	Totals cart.Totals       `json:"totals"`
}

func render(c *gin.Context, status int, lines []models.CartLine, taxRateBps int64) {
	if lines == nil {
		lines = []models.CartLine{}
	}
	totals, err := cart.ComputeTotals(lines, taxRateBps)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(status, cartResponse{Items: lines, Totals: totals})
}

// withCart runs fn for the caller and responds with the resulting lines and totals.
func withCart(taxRateBps int64, status int, fn func(c *gin.Context, id auth.Identity) ([]models.CartLine, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		lines, err := fn(c, id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		render(c, status, lines, taxRateBps)
	}
}

// GET /cart
func GetCart(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusOK, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		return carts.Lines(c.Request.Context(), id)
	})
}

// POST /cart/items
func AddItem(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusCreated, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			return nil, invalidInput(err)
		}
		return carts.AddItem(c.Request.Context(), id, input.MenuItemID)
	})
}

// DELETE /cart/items/:id
func RemoveItem(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusOK, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		return carts.RemoveItem(c.Request.Context(), id, c.Param("id"))
	})
}

// POST /cart/items/:id/increase
func IncreaseItem(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusOK, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		return carts.IncreaseQuantity(c.Request.Context(), id, c.Param("id"))
	})
}

// POST /cart/items/:id/decrease
func DecreaseItem(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusOK, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		return carts.DecreaseQuantity(c.Request.Context(), id, c.Param("id"))
	})
}

// PUT /cart/items/:id
func SetQuantity(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return withCart(taxRateBps, http.StatusOK, func(c *gin.Context, id auth.Identity) ([]models.CartLine, error) {
		var input SetQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			return nil, invalidInput(err)
		}
		return carts.SetQuantity(c.Request.Context(), id, c.Param("id"), *input.Quantity)
	})
}

// DELETE /cart
func ClearCart(carts *cart.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if err := carts.Clear(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /cart/totals?split=N
func GetTotals(carts *cart.Aggregator, taxRateBps int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.Error(c, err)
			return
		}

		split := int64(1)
		if raw := c.Query("split"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respond.BadRequest(c, "split must be a whole number")
				return
			}
			split = n
		}

		totals, err := carts.Total(c.Request.Context(), id, taxRateBps)
		if err != nil {
			respond.Error(c, err)
			return
		}
		spec, err := cart.Split(totals.GrandTotal, split)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totals": totals, "split": spec})
	}
}

func invalidInput(err error) error {
	return apperror.Wrap(apperror.KindInvalidInput, "Invalid input: "+err.Error(), err)
}
