package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/config"
	"github.com/junaidrashid-git/canteen-api/database"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
	"github.com/junaidrashid-git/canteen-api/order"
	"github.com/junaidrashid-git/canteen-api/qr"
	"github.com/junaidrashid-git/canteen-api/store"
)

type testServer struct {
	router *gin.Engine
	menu   *store.MenuStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		StaffUsername:     "kitchen",
		StaffPassword:     "secret",
		TaxRateBps:        500,
		OrderPollInterval: time.Second,
		PaymentMode:       "sandbox",
		UploadDir:         t.TempDir(),
		UPIID:             "canteen@okaxis",
		UPIName:           "College Canteen",
	}
	log := zap.NewNop()

	menu := store.NewMenuStore(db)
	carts := cart.New(store.NewCartStore(db), menu, log)
	orders := order.NewService(store.NewOrderRepository(db), carts, menu, nil, log, order.Config{
		TaxRateBps:        cfg.TaxRateBps,
		RequestTimeout:    5 * time.Second,
		CartClearAttempts: 1,
	})

	for _, it := range []models.MenuItem{
		{ID: "dosa", Name: "Masala Dosa", Price: money.FromMajor(60), Category: "South Indian", Available: true},
		{ID: "samosa", Name: "Samosa (2 pcs)", Price: money.FromMajor(30), Category: "Snacks", Available: true},
	} {
		it := it
		if err := menu.CreateItem(context.Background(), &it); err != nil {
			t.Fatal(err)
		}
	}

	router := NewRouter(Deps{
		Config: cfg,
		Log:    log,
		Tokens: auth.NewTokens("test-secret", time.Hour),
		Carts:  carts,
		Orders: orders,
		Menu:   menu,
		Users:  store.NewUserStore(db),
		Tables: store.NewQRStore(db),
		QRGen:  qr.NewGenerator(cfg.UploadDir, "http://api.test", "http://app.test"),
	})
	return &testServer{router: router, menu: menu}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "phone": "9876543210", "password": "pa55word",
	})
	expectStatus(t, w, http.StatusCreated)
	var resp tokenResponse
	decode(t, w, &resp)
	return resp.Token
}

func (s *testServer) staffToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/staff-login", "", map[string]string{"username": "kitchen", "password": "secret"})
	expectStatus(t, w, http.StatusOK)
	var resp tokenResponse
	decode(t, w, &resp)
	return resp.Token
}

type checkoutResponse struct {
	Order struct {
		ID              string        `json:"id"`
		TotalAmount     money.Money   `json:"total_amount"`
		PerPersonAmount money.Money   `json:"per_person_amount"`
		Shares          []money.Money `json:"shares"`
		OrderStatus     string        `json:"order_status"`
		PaymentStatus   string        `json:"payment_status"`
	} `json:"order"`
	Replayed    bool `json:"replayed"`
	CartCleared bool `json:"cart_cleared"`
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@college.edu")
	staff := s.staffToken(t)

	expectStatus(t, s.do(t, http.MethodPost, "/cart/items", alice, map[string]string{"menu_item_id": "dosa"}), http.StatusCreated)
	expectStatus(t, s.do(t, http.MethodPost, "/cart/items", alice, map[string]string{"menu_item_id": "samosa"}), http.StatusCreated)
	expectStatus(t, s.do(t, http.MethodPost, "/cart/items/dosa/increase", alice, nil), http.StatusOK)

	w := s.do(t, http.MethodGet, "/cart/totals?split=3", alice, nil)
	expectStatus(t, w, http.StatusOK)
	var totals struct {
		Totals cart.Totals    `json:"totals"`
		Split  cart.SplitSpec `json:"split"`
	}
	decode(t, w, &totals)
	if totals.Totals.GrandTotal != money.FromMinor(15750) {
		t.Fatalf("expected grand total 157.50, got %s", totals.Totals.GrandTotal)
	}
	if totals.Split.PerPerson != money.FromMinor(5250) {
		t.Fatalf("expected 52.50 each, got %s", totals.Split.PerPerson)
	}

	w = s.do(t, http.MethodPost, "/orders/checkout", alice, map[string]interface{}{"split_count": 3}, "Idempotency-Key", "attempt-1")
	expectStatus(t, w, http.StatusCreated)
	var placed checkoutResponse
	decode(t, w, &placed)
	if placed.Order.TotalAmount != money.FromMinor(15750) || len(placed.Order.Shares) != 3 {
		t.Fatalf("unexpected order %+v", placed.Order)
	}
	if placed.Order.OrderStatus != "placed" || placed.Order.PaymentStatus != "pending" || !placed.CartCleared {
		t.Fatalf("unexpected checkout result %+v", placed)
	}

	// resubmitting the same attempt returns the same order
	w = s.do(t, http.MethodPost, "/orders/checkout", alice, map[string]interface{}{"split_count": 3}, "Idempotency-Key", "attempt-1")
	expectStatus(t, w, http.StatusOK)
	var replay checkoutResponse
	decode(t, w, &replay)
	if !replay.Replayed || replay.Order.ID != placed.Order.ID {
		t.Fatalf("expected replay of %s, got %+v", placed.Order.ID, replay)
	}

	// the cart is empty now, so a fresh attempt has nothing to order
	w = s.do(t, http.MethodPost, "/orders/checkout", alice, nil, "Idempotency-Key", "attempt-2")
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(t, http.MethodGet, "/orders", alice, nil)
	expectStatus(t, w, http.StatusOK)
	var mine struct {
		Orders []json.RawMessage `json:"orders"`
	}
	decode(t, w, &mine)
	if len(mine.Orders) != 1 {
		t.Fatalf("expected one order, got %d", len(mine.Orders))
	}

	id := placed.Order.ID
	expectStatus(t, s.do(t, http.MethodPut, "/orders/"+id+"/status", staff, map[string]string{"status": "preparing"}), http.StatusOK)
	// skipping a step is rejected
	expectStatus(t, s.do(t, http.MethodPut, "/orders/"+id+"/status", staff, map[string]string{"status": "delivered"}), http.StatusConflict)

	expectStatus(t, s.do(t, http.MethodPost, "/payment/webhook", "", map[string]string{"order_id": id, "status": "paid", "txn_ref": "T1"}), http.StatusOK)
	// payment resolves once
	expectStatus(t, s.do(t, http.MethodPost, "/payment/webhook", "", map[string]string{"order_id": id, "status": "failed"}), http.StatusConflict)

	w = s.do(t, http.MethodGet, "/orders/"+id+"/bill", alice, nil)
	expectStatus(t, w, http.StatusOK)
	var bill struct {
		Subtotal      money.Money `json:"subtotal"`
		Tax           money.Money `json:"tax"`
		PaymentStatus string      `json:"payment_status"`
	}
	decode(t, w, &bill)
	if bill.Subtotal != money.FromMajor(150) || bill.Tax != money.FromMinor(750) || bill.PaymentStatus != "paid" {
		t.Fatalf("unexpected bill %+v", bill)
	}

	w = s.do(t, http.MethodGet, "/orders/"+id+"/history", alice, nil)
	expectStatus(t, w, http.StatusOK)
	var history struct {
		History []models.OrderStatusChange `json:"history"`
	}
	decode(t, w, &history)
	if len(history.History) != 3 {
		t.Fatalf("expected placed, preparing and paid rows, got %+v", history.History)
	}
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "Alice", "alice@college.edu")
	bob := s.register(t, "Bob", "bob@college.edu")

	expectStatus(t, s.do(t, http.MethodPost, "/cart/items", alice, map[string]string{"menu_item_id": "dosa"}), http.StatusCreated)
	w := s.do(t, http.MethodPost, "/orders/checkout", alice, nil)
	expectStatus(t, w, http.StatusCreated)
	var placed checkoutResponse
	decode(t, w, &placed)
	id := placed.Order.ID

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/cart", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/orders", "not-a-jwt", nil, http.StatusUnauthorized},
		{"other customer's order", http.MethodGet, "/orders/" + id, bob, nil, http.StatusForbidden},
		{"customer advances status", http.MethodPut, "/orders/" + id + "/status", alice, map[string]string{"status": "preparing"}, http.StatusForbidden},
		{"customer lists all orders", http.MethodGet, "/orders/all", alice, nil, http.StatusForbidden},
		{"customer manages menu", http.MethodGet, "/menu/all", alice, nil, http.StatusForbidden},
		{"unknown order", http.MethodGet, "/orders/missing", alice, nil, http.StatusNotFound},
		{"unknown menu item", http.MethodPost, "/cart/items", bob, map[string]string{"menu_item_id": "pizza"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(t, tt.method, tt.path, tt.token, tt.body), tt.want)
		})
	}
}

func TestGuestCartIsIsolatedFromLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/guest", "", nil)
	expectStatus(t, w, http.StatusOK)
	var guest tokenResponse
	decode(t, w, &guest)

	expectStatus(t, s.do(t, http.MethodPost, "/cart/items", guest.Token, map[string]string{"menu_item_id": "samosa"}), http.StatusCreated)

	// registering while holding the guest token switches to the new, empty cart
	w = s.do(t, http.MethodPost, "/auth/register", guest.Token, map[string]string{
		"name": "Carol", "email": "carol@college.edu", "phone": "9000000000", "password": "pa55word",
	})
	expectStatus(t, w, http.StatusCreated)
	var reg struct {
		Token string            `json:"token"`
		Cart  []models.CartLine `json:"cart"`
	}
	decode(t, w, &reg)
	if len(reg.Cart) != 0 {
		t.Fatalf("expected empty cart for the new account, got %+v", reg.Cart)
	}

	// the guest's cart is untouched
	w = s.do(t, http.MethodGet, "/cart", guest.Token, nil)
	expectStatus(t, w, http.StatusOK)
	var gc struct {
		Items []models.CartLine `json:"items"`
	}
	decode(t, w, &gc)
	if len(gc.Items) != 1 || gc.Items[0].MenuItemID != "samosa" {
		t.Fatalf("guest cart changed: %+v", gc.Items)
	}
}

func TestPublicMenu(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/menu/items", "", nil)
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/menu/categories", "", nil)
	expectStatus(t, w, http.StatusOK)

	expectStatus(t, s.do(t, http.MethodGet, "/menu/items/nope", "", nil), http.StatusNotFound)
}

func TestStaffTableQRCodes(t *testing.T) {
	s := newTestServer(t)
	staff := s.staffToken(t)

	w := s.do(t, http.MethodPost, "/qr/tables/batch", staff, map[string]int{"table_count": 2})
	expectStatus(t, w, http.StatusCreated)
	var batch struct {
		Tables []models.QRTable `json:"tables"`
	}
	decode(t, w, &batch)
	if len(batch.Tables) != 2 {
		t.Fatalf("expected two tables, got %+v", batch.Tables)
	}

	expectStatus(t, s.do(t, http.MethodDelete, "/qr/tables/"+strconv.FormatUint(uint64(batch.Tables[0].ID), 10), staff, nil), http.StatusOK)

	w = s.do(t, http.MethodGet, "/qr/tables", staff, nil)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Tables []models.QRTable `json:"tables"`
	}
	decode(t, w, &list)
	if len(list.Tables) != 1 || list.Tables[0].TableNumber != batch.Tables[1].TableNumber {
		t.Fatalf("unexpected tables after delete: %+v", list.Tables)
	}
}
