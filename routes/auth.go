package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/auth"
)

// SetupAuthRoutes registers all /auth/* endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	deps := auth.Deps{
		Users:         d.Users,
		Tokens:        d.Tokens,
		Carts:         d.Carts,
		StaffUsername: d.Config.StaffUsername,
		StaffPassword: d.Config.StaffPassword,
		Log:           d.Log,
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(deps))
		authGroup.POST("/login", auth.Login(deps))
		authGroup.POST("/staff-login", auth.StaffLogin(deps))
		authGroup.POST("/guest", auth.CreateGuestUser(deps))
		authGroup.GET("/verify", auth.Verify(deps))
	}
}
