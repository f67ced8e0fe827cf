package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/payment"
)

func protected(tokens *auth.Tokens, staffOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{ValidateToken(tokens)}
	if staffOnly {
		chain = append(chain, RequireStaff())
	}
	chain = append(chain, func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		c.String(http.StatusOK, id.ID)
	})
	r.GET("/x", chain...)
	return r
}

func TestValidateToken(t *testing.T) {
	tokens := auth.NewTokens("k", time.Hour)
	tok, _, _ := tokens.Issue(auth.Identity{ID: "u1", Role: auth.RoleCustomer}, 0)
	r := protected(tokens, false)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + tok, "", http.StatusOK},
		{"bare token", tok, "", http.StatusOK},
		{"query fallback", "", "?token=" + tok, http.StatusOK},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.status == http.StatusOK && w.Body.String() != "u1" {
				t.Fatalf("identity not set, got %q", w.Body.String())
			}
		})
	}
}

func TestRequireStaff(t *testing.T) {
	tokens := auth.NewTokens("k", time.Hour)
	customer, _, _ := tokens.Issue(auth.Identity{ID: "u1", Role: auth.RoleCustomer}, 0)
	staff, _, _ := tokens.Issue(auth.Identity{ID: "staff:admin123", Role: auth.RoleStaff}, 0)
	r := protected(tokens, true)

	for tok, want := range map[string]int{customer: http.StatusForbidden, staff: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("expected %d, got %d", want, w.Code)
		}
	}
}

func TestPaymentWebhookAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "whsec"

	newRouter := func(sandbox bool) *gin.Engine {
		r := gin.New()
		r.POST("/payment/webhook", PaymentWebhookAuth(secret, sandbox, nil), func(c *gin.Context) {
			res, ok := Resolution(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.String(http.StatusOK, res.OrderID+":"+res.Status)
		})
		return r
	}

	res := payment.Resolution{OrderID: "o1", Status: "paid", Amount: "65.63", TxnRef: "T1"}
	form := url.Values{"order_id": {"o1"}, "status": {"paid"}, "amount": {"65.63"}, "txn_ref": {"T1"}}

	post := func(r *gin.Engine, body url.Values, sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if sig != "" {
			req.Header.Set(SignatureHeader, sig)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	prod := newRouter(false)
	if w := post(prod, form, payment.Sign(secret, res.Field)); w.Code != http.StatusOK || w.Body.String() != "o1:paid" {
		t.Fatalf("signed webhook: %d %s", w.Code, w.Body.String())
	}
	if w := post(prod, form, ""); w.Code != http.StatusForbidden {
		t.Fatalf("unsigned webhook: expected 403, got %d", w.Code)
	}
	if w := post(prod, form, payment.Sign("wrong", res.Field)); w.Code != http.StatusForbidden {
		t.Fatalf("bad signature: expected 403, got %d", w.Code)
	}

	withSigField := url.Values{}
	for k, v := range form {
		withSigField[k] = v
	}
	withSigField.Set("signature", payment.Sign(secret, res.Field))
	if w := post(prod, withSigField, ""); w.Code != http.StatusOK {
		t.Fatalf("signature form field: expected 200, got %d", w.Code)
	}

	if w := post(newRouter(true), form, ""); w.Code != http.StatusOK {
		t.Fatalf("sandbox: expected 200, got %d", w.Code)
	}
}
