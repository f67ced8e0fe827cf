package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/apperror"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"empty cart", apperror.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART", false},
		{"transition", apperror.New(apperror.KindInvalidTransition, "nope"), http.StatusConflict, "INVALID_TRANSITION", false},
		{"forbidden", apperror.ErrForbidden, http.StatusForbidden, "FORBIDDEN", false},
		{"timeout", apperror.Transient("get order", context.DeadlineExceeded), http.StatusServiceUnavailable, "TRANSIENT_IO", true},
		{"raw", errors.New("pq: connection reset"), http.StatusServiceUnavailable, "TRANSIENT_IO", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["code"] != tt.code || body["retryable"] != tt.retryable {
				t.Fatalf("unexpected body %v", body)
			}
			if tt.retryable && body["error"] == tt.err.Error() {
				t.Fatal("transient errors must not expose the cause")
			}
		})
	}
}
