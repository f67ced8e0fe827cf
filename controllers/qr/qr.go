package qrcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/qr"
	"github.com/junaidrashid-git/canteen-api/store"
)

const maxBatch = 100

type CreateTableInput struct {
	TableNumber string `json:"table_number" binding:"required"`
}

type CreateBatchInput struct {
	TableNumbers []string `json:"table_numbers"`
	TableCount   int      `json:"table_count"`
}

// POST /qr/tables
func CreateTable(gen *qr.Generator, tables *store.QRStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateTableInput
		if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.TableNumber) == "" {
			respond.BadRequest(c, "table_number is required")
			return
		}

		rec, err := renderAndSave(c, gen, tables, input.TableNumber)
		if err != nil {
			respond.Error(c, err)
			return
		}
		log.Info("table qr generated", zap.String("table", rec.TableNumber), zap.String("file_url", rec.FileURL))
		c.JSON(http.StatusCreated, rec)
	}
}

// POST /qr/tables/batch renders table_numbers, or tables 1..table_count.
func CreateTablesBatch(gen *qr.Generator, tables *store.QRStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateBatchInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, "Invalid input: "+err.Error())
			return
		}

		numbers := input.TableNumbers
		if len(numbers) == 0 {
			for i := 1; i <= input.TableCount; i++ {
				numbers = append(numbers, strconv.Itoa(i))
			}
		}
		if len(numbers) == 0 || len(numbers) > maxBatch {
			respond.BadRequest(c, "Provide between 1 and "+strconv.Itoa(maxBatch)+" tables")
			return
		}

		out := make([]models.QRTable, 0, len(numbers))
		for _, n := range numbers {
			if strings.TrimSpace(n) == "" {
				continue
			}
			rec, err := renderAndSave(c, gen, tables, n)
			if err != nil {
				respond.Error(c, err)
				return
			}
			out = append(out, rec)
		}
		log.Info("table qr batch generated", zap.Int("count", len(out)))
		c.JSON(http.StatusCreated, gin.H{"tables": out})
	}
}

// GET /qr/tables
func ListTables(tables *store.QRStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tables.ListTables(c.Request.Context())
		if err != nil {
			respond.Error(c, apperror.Transient("list qr codes", err))
			return
		}
		if list == nil {
			list = []models.QRTable{}
		}
		c.JSON(http.StatusOK, gin.H{"tables": list})
	}
}

func renderAndSave(c *gin.Context, gen *qr.Generator, tables *store.QRStore, table string) (models.QRTable, error) {
	rec, err := gen.Render(table)
	if err != nil {
		return models.QRTable{}, err
	}
	if err := tables.SaveTable(c.Request.Context(), &rec); err != nil {
		_ = gen.Remove(rec.FileName)
		return models.QRTable{}, apperror.Transient("save qr code", err)
	}
	return rec, nil
}
