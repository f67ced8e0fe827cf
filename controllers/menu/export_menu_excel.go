package menucontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/store"
)

func ExportMenuToExcel(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := menu.ListItems(c.Request.Context(), store.MenuFilter{IncludeUnavailable: true})
		if err != nil {
			respond.Error(c, apperror.Transient("list menu", err))
			return
		}

		file, err := buildMenuSheet(items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=menu.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	}
}

func buildMenuSheet(items []models.MenuItem) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range menuColumns {
		headerRow.AddCell().SetValue(h)
	}

	for _, it := range items {
		row := sheet.AddRow()
		row.AddCell().SetValue(it.ID)
		row.AddCell().SetValue(it.Name)
		row.AddCell().SetValue(it.Description)
		row.AddCell().SetValue(it.Price.String())
		row.AddCell().SetValue(it.Category)
		row.AddCell().SetValue(it.ImageURL)
		row.AddCell().SetBool(it.Available)
		row.AddCell().SetValue(it.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(it.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
