package menucontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/store"
)

// Sheet columns shared by import and export.
var menuColumns = []string{"ID", "Name", "Description", "Price", "Category", "ImageURL", "Available", "CreatedAt", "UpdatedAt"}

// ImportMenuFromExcel upserts rows of the first sheet: a known ID updates that
// item, a blank ID creates one. Rows without a name, price or category are skipped.
func ImportMenuFromExcel(menu *store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			respond.BadRequest(c, "Excel file is required")
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			respond.BadRequest(c, "Failed to parse Excel file")
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			respond.BadRequest(c, "Excel file is empty or missing header row")
			return
		}

		items, skipped := parseMenuSheet(xlFile.Sheets[0])
		created, updated, err := menu.UpsertItems(c.Request.Context(), items)
		if err != nil {
			respond.Error(c, apperror.Transient("import menu", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": created,
			"updated_count": updated,
			"skipped_count": skipped,
		})
	}
}

func parseMenuSheet(sheet *xlsx.Sheet) (items []models.MenuItem, skipped int) {
	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 5 {
			skipped++
			continue
		}

		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		name := get(1)
		category := get(4)
		price, err := money.Parse(get(3))
		if name == "" || category == "" || err != nil || price == 0 {
			skipped++
			continue
		}

		available := true
		if s := get(6); s != "" {
			if v, err := strconv.ParseBool(s); err == nil {
				available = v
			}
		}

		items = append(items, models.MenuItem{
			ID:          get(0),
			Name:        name,
			Description: get(2),
			Price:       price,
			Category:    category,
			ImageURL:    get(5),
			Available:   available,
		})
	}
	return items, skipped
}
