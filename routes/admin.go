package routes

import (
	"github.com/gin-gonic/gin"

	menucontroller "github.com/junaidrashid-git/canteen-api/controllers/menu"
	qrcontroller "github.com/junaidrashid-git/canteen-api/controllers/qr"
	"github.com/junaidrashid-git/canteen-api/middleware"
)

// SetupStaffRoutes registers menu and table management. Requires a staff token.
func SetupStaffRoutes(r *gin.Engine, d Deps) {
	// ─────────── Menu Management ───────────
	menuAdmin := r.Group("/menu")
	menuAdmin.Use(middleware.ValidateToken(d.Tokens), middleware.RequireStaff())
	{
		menuAdmin.GET("/all", menucontroller.GetAllMenuItems(d.Menu))
		menuAdmin.POST("/items", menucontroller.CreateMenuItem(d.Menu, d.Config.UploadDir))
		menuAdmin.PUT("/items/:id", menucontroller.UpdateMenuItem(d.Menu, d.Config.UploadDir))
		menuAdmin.DELETE("/items/:id", menucontroller.DeleteMenuItem(d.Menu))
		menuAdmin.POST("/import-excel", menucontroller.ImportMenuFromExcel(d.Menu))
		menuAdmin.GET("/export-excel", menucontroller.ExportMenuToExcel(d.Menu))
	}

	// ─────────── Table QR Codes ───────────
	tables := r.Group("/qr/tables")
	tables.Use(middleware.ValidateToken(d.Tokens), middleware.RequireStaff())
	{
		tables.GET("", qrcontroller.ListTables(d.Tables))
		tables.POST("", qrcontroller.CreateTable(d.QRGen, d.Tables, d.Log))
		tables.POST("/batch", qrcontroller.CreateTablesBatch(d.QRGen, d.Tables, d.Log))
		tables.DELETE("/:id", qrcontroller.DeleteTable(d.QRGen, d.Tables, d.Log))
	}
}
