package menucontroller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/store"
)

// CreateMenuItem creates an item from a multipart form with an optional image upload.
func CreateMenuItem(menu *store.MenuStore, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Required fields
		name := strings.TrimSpace(c.PostForm("name"))
		priceStr := c.PostForm("price")
		category := strings.TrimSpace(c.PostForm("category"))
		if name == "" || priceStr == "" || category == "" {
			respond.BadRequest(c, "name, price and category are required")
			return
		}

		price, err := money.Parse(priceStr)
		if err != nil || price == 0 {
			respond.BadRequest(c, "Invalid price")
			return
		}

		available := true
		if s := c.PostForm("available"); s != "" {
			available, err = strconv.ParseBool(s)
			if err != nil {
				respond.BadRequest(c, "Invalid available flag")
				return
			}
		}

		imageURL, err := saveImage(c, uploadDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if imageURL == "" {
			imageURL = c.PostForm("image_url")
		}

		item := models.MenuItem{
			Name:        name,
			Description: c.PostForm("description"),
			Price:       price,
			Category:    category,
			ImageURL:    imageURL,
			Available:   available,
		}
		if err := menu.CreateItem(c.Request.Context(), &item); err != nil {
			respond.Error(c, apperror.Transient("create menu item", err))
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

// saveImage stores the optional "image" upload under uploadDir/menu and
// returns its public path, or "" when no file was sent.
func saveImage(c *gin.Context, uploadDir string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), strings.ReplaceAll(filepath.Base(file.Filename), " ", "_"))

	saveDir := filepath.Join(uploadDir, "menu")
	if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("Failed to create upload folder: %v", err)
	}
	if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
		return "", fmt.Errorf("Failed to save image: %v", err)
	}
	return "/uploads/menu/" + filename, nil
}
