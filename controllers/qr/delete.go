package qrcontroller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
	"github.com/junaidrashid-git/canteen-api/qr"
	"github.com/junaidrashid-git/canteen-api/store"
)

// DELETE /qr/tables/:id
func DeleteTable(gen *qr.Generator, tables *store.QRStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			respond.BadRequest(c, "ID is required")
			return
		}

		rec, err := tables.GetTable(c.Request.Context(), uint(id))
		if err != nil {
			respond.Error(c, apperror.Transient("get qr code", err))
			return
		}

		if err := gen.Remove(rec.FileName); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file from disk"})
			return
		}
		if err := tables.DeleteTable(c.Request.Context(), rec.ID); err != nil {
			respond.Error(c, apperror.Transient("delete qr code", err))
			return
		}

		log.Info("table qr deleted", zap.String("file", rec.FileName))
		c.JSON(http.StatusOK, gin.H{"message": "QR code deleted successfully"})
	}
}
