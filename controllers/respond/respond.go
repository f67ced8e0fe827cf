// Package respond writes error responses in the API's common shape.
package respond

import (
	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
)

// Error writes {"error", "code", "retryable"} with the status of err's kind.
func Error(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	msg := apperror.Message(err)
	if kind == apperror.KindTransientIO {
		// never leak driver errors
		msg = "Service temporarily unavailable, please retry"
	}
	_ = c.Error(err)
	c.JSON(apperror.HTTPStatus(kind), gin.H{
		"error":     msg,
		"code":      kind,
		"retryable": apperror.Retryable(err),
	})
}

// AbortError is Error followed by c.Abort, for middleware.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BadRequest reports a binding or validation failure as InvalidInput.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.New(apperror.KindInvalidInput, message))
}
