package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/controllers/respond"
)

// ValidateToken parses the bearer token (or ?token= for websockets) and puts
// the identity on the context.
func ValidateToken(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.BearerToken(c)
		if tokenString == "" {
			respond.AbortError(c, apperror.New(apperror.KindUnauthorized, "Authorization header is missing"))
			return
		}

		id, err := tokens.Parse(tokenString)
		if err != nil {
			respond.AbortError(c, err)
			return
		}

		auth.SetIdentity(c, id)
		c.Next()
	}
}

// RequireStaff rejects any identity without the staff role. It must run after ValidateToken.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.FromContext(c)
		if err != nil {
			respond.AbortError(c, err)
			return
		}
		if !id.IsStaff() {
			respond.AbortError(c, apperror.New(apperror.KindForbidden, "Staff access required"))
			return
		}
		c.Next()
	}
}
