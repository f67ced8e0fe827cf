// Package order turns cart snapshots into orders and moves them through the
// fulfilment and payment state machines.
//
// The two status axes are independent. Fulfilment only moves to the immediate
// successor and only for staff; payment resolves once, to paid or failed. Both
// are applied with a compare-and-swap in the Repository, so two racing staff
// clients cannot both advance the same order.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
)

// Repository is the durable order store.
type Repository interface {
	// Create inserts the order with its items and the initial history row.
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id string) (models.Order, error)
	FindByCheckoutToken(ctx context.Context, userID, token string) (models.Order, error)
	// List returns orders newest first. An empty userID lists every order.
	List(ctx context.Context, userID string) ([]models.Order, error)
	// CompareAndSetOrderStatus moves the order from -> to and reports whether it did.
	CompareAndSetOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, actor string) (bool, error)
	CompareAndSetPaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus, actor string) (bool, error)
	History(ctx context.Context, id string) ([]models.OrderStatusChange, error)
	// MarkCartCleared records that the cart behind the order was emptied.
	MarkCartCleared(ctx context.Context, id string) error
}

// Carts is the part of the cart aggregator checkout depends on.
type Carts interface {
	Snapshot(ctx context.Context, id auth.Identity) (cart.Snapshot, error)
	Clear(ctx context.Context, id auth.Identity) error
}

// Scope selects which orders ListOrders returns.
type Scope int

const (
	ScopeCustomer Scope = iota
	ScopeStaff
)

type Config struct {
	TaxRateBps        int64
	RequestTimeout    time.Duration
	CartClearAttempts int
	ClearRetryDelay   time.Duration
}

type Service struct {
	repo    Repository
	carts   Carts
	catalog cart.Catalog
	pub     Publisher
	log     *zap.Logger
	cfg     Config
	now     func() time.Time
}

func NewService(repo Repository, carts Carts, catalog cart.Catalog, pub Publisher, log *zap.Logger, cfg Config) *Service {
	if pub == nil {
		pub = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.CartClearAttempts < 1 {
		cfg.CartClearAttempts = 1
	}
	if cfg.ClearRetryDelay <= 0 {
		cfg.ClearRetryDelay = 100 * time.Millisecond
	}
	return &Service{repo: repo, carts: carts, catalog: catalog, pub: pub, log: log, cfg: cfg, now: time.Now}
}

// TaxRateBps is the rate applied at checkout.
func (s *Service) TaxRateBps() int64 { return s.cfg.TaxRateBps }

// MaxCheckoutTokenLen is the longest accepted client checkout token.
const MaxCheckoutTokenLen = 64

// CheckoutRequest is one client checkout attempt. Token identifies the attempt;
// resubmitting the same token never creates a second order.
type CheckoutRequest struct {
	SplitCount  int64
	TableNumber *string
	Token       string
}

// CheckoutResult reports the order and whether the cart was cleared after it.
// CartCleared false with ClearErr set is the only partial outcome: the order
// exists and the cart may still show its lines until the next clear succeeds.
type CheckoutResult struct {
	Order       models.Order
	Replayed    bool
	CartCleared bool
	ClearErr    error
}

// CreateOrder builds and stores an order from a snapshot. The split is
// recomputed from the snapshot's grand total using split.SplitCount.
func (s *Service) CreateOrder(ctx context.Context, id auth.Identity, snap cart.Snapshot, split cart.SplitSpec, tableNumber *string) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	o, err := s.buildOrder(id, snap, split.SplitCount, tableNumber, uuid.NewString())
	if err != nil {
		return models.Order{}, err
	}
	if err := s.repo.Create(ctx, &o); err != nil {
		return models.Order{}, apperror.Transient("create order", err)
	}
	s.publish(ctx, Event{Type: EventOrderPlaced, OrderID: o.ID, UserID: o.UserID, To: string(o.OrderStatus), Actor: id.ID, Order: &o, At: o.CreatedAt})
	return o, nil
}

// Checkout creates the order for the identity's current cart and clears the cart.
// Prices and names are refreshed from the catalog first.
func (s *Service) Checkout(ctx context.Context, id auth.Identity, req CheckoutRequest) (CheckoutResult, error) {
	if !id.Valid() {
		return CheckoutResult{}, apperror.ErrUnauthorized
	}
	if req.SplitCount == 0 {
		req.SplitCount = 1
	}
	if req.SplitCount < 1 || req.SplitCount > cart.MaxSplitCount {
		return CheckoutResult{}, apperror.New(apperror.KindInvalidSplitCount,
			fmt.Sprintf("split count must be between 1 and %d", cart.MaxSplitCount))
	}
	if len(req.Token) > MaxCheckoutTokenLen {
		return CheckoutResult{}, apperror.New(apperror.KindInvalidInput,
			fmt.Sprintf("checkout token must not exceed %d characters", MaxCheckoutTokenLen))
	}
	if req.Token == "" {
		req.Token = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	if existing, err := s.repo.FindByCheckoutToken(ctx, id.ID, req.Token); err == nil {
		return s.finishCheckout(ctx, id, existing, true), nil
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return CheckoutResult{}, apperror.Transient("find order", err)
	}

	snap, err := s.carts.Snapshot(ctx, id)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(snap.Lines) == 0 {
		return CheckoutResult{}, apperror.ErrEmptyCart
	}
	if err := s.refreshPrices(ctx, snap.Lines); err != nil {
		return CheckoutResult{}, err
	}

	o, err := s.buildOrder(id, snap, req.SplitCount, req.TableNumber, req.Token)
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := s.repo.Create(ctx, &o); err != nil {
		// A concurrent submit with the same token may have won the insert.
		if existing, findErr := s.repo.FindByCheckoutToken(ctx, id.ID, req.Token); findErr == nil {
			return s.finishCheckout(ctx, id, existing, true), nil
		}
		return CheckoutResult{}, apperror.Transient("create order", err)
	}

	s.log.Info("order placed",
		zap.String("order_id", o.ID), zap.String("user_id", o.UserID),
		zap.Stringer("total", o.TotalAmount), zap.Int64("split_count", o.SplitCount))
	s.publish(ctx, Event{Type: EventOrderPlaced, OrderID: o.ID, UserID: o.UserID, To: string(o.OrderStatus), Actor: id.ID, Order: &o, At: o.CreatedAt})

	return s.finishCheckout(ctx, id, o, false), nil
}

// finishCheckout clears the cart once per order. A replay whose order already
// cleared its cart leaves the current cart alone, since it may hold new lines.
func (s *Service) finishCheckout(ctx context.Context, id auth.Identity, o models.Order, replayed bool) CheckoutResult {
	res := CheckoutResult{Order: o, Replayed: replayed}
	if o.CartCleared {
		res.CartCleared = true
		return res
	}
	if err := s.clearCart(ctx, id); err != nil {
		s.log.Warn("cart not cleared after checkout",
			zap.String("order_id", o.ID), zap.String("user_id", id.ID), zap.Error(err))
		res.ClearErr = err
		return res
	}
	res.CartCleared = true
	res.Order.CartCleared = true
	if err := s.repo.MarkCartCleared(ctx, o.ID); err != nil {
		// a later replay clears again, which is the behaviour before this mark
		s.log.Warn("cart clear not recorded", zap.String("order_id", o.ID), zap.Error(err))
	}
	return res
}

func (s *Service) clearCart(ctx context.Context, id auth.Identity) error {
	var err error
	for attempt := 1; attempt <= s.cfg.CartClearAttempts; attempt++ {
		if err = s.carts.Clear(ctx, id); err == nil {
			return nil
		}
		if attempt == s.cfg.CartClearAttempts {
			break
		}
		select {
		case <-time.After(s.cfg.ClearRetryDelay):
		case <-ctx.Done():
			return apperror.Transient("clear cart", ctx.Err())
		}
	}
	return err
}

func (s *Service) refreshPrices(ctx context.Context, lines []models.CartLine) error {
	for i := range lines {
		item, err := s.catalog.GetItem(ctx, lines[i].MenuItemID)
		if err != nil {
			return apperror.Transient("get menu item", err)
		}
		if !item.Available {
			return apperror.New(apperror.KindNotFound, item.Name+" is no longer available")
		}
		lines[i].Name = item.Name
		lines[i].UnitPrice = item.Price
	}
	return nil
}

func (s *Service) buildOrder(id auth.Identity, snap cart.Snapshot, splitCount int64, tableNumber *string, token string) (models.Order, error) {
	if !id.Valid() {
		return models.Order{}, apperror.ErrUnauthorized
	}
	if len(snap.Lines) == 0 {
		return models.Order{}, apperror.ErrEmptyCart
	}
	for _, l := range snap.Lines {
		if l.Quantity < 1 || l.Quantity > cart.MaxQuantity {
			return models.Order{}, apperror.New(apperror.KindInvalidQuantity,
				fmt.Sprintf("cart line quantity must be between 1 and %d", cart.MaxQuantity))
		}
	}

	totals, err := cart.ComputeTotals(snap.Lines, s.cfg.TaxRateBps)
	if err != nil {
		return models.Order{}, err
	}
	split, err := cart.Split(totals.GrandTotal, splitCount)
	if err != nil {
		return models.Order{}, err
	}

	now := s.now().UTC()
	orderID := uuid.NewString()
	items := make([]models.OrderItem, len(snap.Lines))
	for i, l := range snap.Lines {
		lineTotal, err := l.LineTotal()
		if err != nil {
			return models.Order{}, apperror.Wrap(apperror.KindInvalidQuantity, "line total is out of range", err)
		}
		items[i] = models.OrderItem{
			OrderID:    orderID,
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			LineTotal:  lineTotal,
			Position:   i,
		}
	}

	var table *string
	if tableNumber != nil && *tableNumber != "" {
		t := *tableNumber
		table = &t
	}

	return models.Order{
		ID:              orderID,
		UserID:          id.ID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		TaxRateBps:      totals.TaxRateBps,
		TotalAmount:     totals.GrandTotal,
		SplitCount:      split.SplitCount,
		PerPersonAmount: split.PerPerson,
		Shares:          append([]money.Money(nil), split.Shares...),
		TableNumber:     table,
		OrderStatus:     models.OrderStatusPlaced,
		PaymentStatus:   models.PaymentStatusPending,
		CheckoutToken:   token,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AdvanceOrderStatus moves an order to target, which must be the immediate
// successor of its current status. Resubmitting the current status succeeds
// without change.
func (s *Service) AdvanceOrderStatus(ctx context.Context, orderID string, target models.OrderStatus, actor auth.Identity) (models.Order, error) {
	if !actor.IsStaff() {
		return models.Order{}, apperror.New(apperror.KindForbidden, "only staff can change order status")
	}
	target, err := models.ParseOrderStatus(string(target))
	if err != nil {
		return models.Order{}, apperror.Wrap(apperror.KindInvalidTransition, "unknown order status", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	for attempt := 0; attempt < 2; attempt++ {
		cur, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return models.Order{}, apperror.Transient("get order", err)
		}
		if cur.OrderStatus == target {
			return cur, nil
		}
		next, ok := cur.OrderStatus.Next()
		if !ok || next != target {
			return models.Order{}, apperror.New(apperror.KindInvalidTransition,
				"cannot move order from "+string(cur.OrderStatus)+" to "+string(target))
		}

		swapped, err := s.repo.CompareAndSetOrderStatus(ctx, orderID, cur.OrderStatus, target, actor.ID)
		if err != nil {
			return models.Order{}, apperror.Transient("update order status", err)
		}
		if !swapped {
			// Someone else moved it; re-evaluate against the fresh state.
			continue
		}

		updated, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return models.Order{}, apperror.Transient("get order", err)
		}
		s.log.Info("order status changed",
			zap.String("order_id", orderID), zap.String("from", string(cur.OrderStatus)),
			zap.String("to", string(target)), zap.String("actor", actor.ID))
		s.publish(ctx, Event{Type: EventStatusChanged, OrderID: orderID, UserID: updated.UserID,
			From: string(cur.OrderStatus), To: string(target), Actor: actor.ID, Order: &updated, At: updated.UpdatedAt})
		return updated, nil
	}
	return models.Order{}, apperror.New(apperror.KindInvalidTransition, "order status changed concurrently")
}

// SetPaymentStatus records the payment outcome. Only the payment collaborator
// and staff may call it, and a resolved payment never changes again.
func (s *Service) SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus, actor auth.Identity) (models.Order, error) {
	if actor.Role != auth.RolePayment && !actor.IsStaff() {
		return models.Order{}, apperror.New(apperror.KindForbidden, "only staff or the payment service can change payment status")
	}
	status, err := models.ParsePaymentStatus(string(status))
	if err != nil {
		return models.Order{}, apperror.Wrap(apperror.KindInvalidTransition, "unknown payment status", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	for attempt := 0; attempt < 2; attempt++ {
		cur, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return models.Order{}, apperror.Transient("get order", err)
		}
		if cur.PaymentStatus == status {
			return cur, nil
		}
		if cur.PaymentStatus.IsResolved() || !status.IsResolved() {
			return models.Order{}, apperror.New(apperror.KindInvalidTransition,
				"cannot move payment from "+string(cur.PaymentStatus)+" to "+string(status))
		}

		swapped, err := s.repo.CompareAndSetPaymentStatus(ctx, orderID, cur.PaymentStatus, status, actor.ID)
		if err != nil {
			return models.Order{}, apperror.Transient("update payment status", err)
		}
		if !swapped {
			continue
		}

		updated, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return models.Order{}, apperror.Transient("get order", err)
		}
		s.log.Info("payment status changed",
			zap.String("order_id", orderID), zap.String("to", string(status)), zap.String("actor", actor.ID))
		s.publish(ctx, Event{Type: EventPaymentChanged, OrderID: orderID, UserID: updated.UserID,
			From: string(cur.PaymentStatus), To: string(status), Actor: actor.ID, Order: &updated, At: updated.UpdatedAt})
		return updated, nil
	}
	return models.Order{}, apperror.New(apperror.KindInvalidTransition, "payment status changed concurrently")
}

// ListOrders returns every order for ScopeStaff and the caller's own orders for ScopeCustomer.
func (s *Service) ListOrders(ctx context.Context, id auth.Identity, scope Scope) ([]models.Order, error) {
	if !id.Valid() {
		return nil, apperror.ErrUnauthorized
	}
	userID := id.ID
	if scope == ScopeStaff {
		if !id.IsStaff() {
			return nil, apperror.New(apperror.KindForbidden, "staff scope requires staff")
		}
		userID = ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	orders, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperror.Transient("list orders", err)
	}
	return orders, nil
}

// GetOrder returns one order visible to id.
func (s *Service) GetOrder(ctx context.Context, id auth.Identity, orderID string) (models.Order, error) {
	if !id.Valid() {
		return models.Order{}, apperror.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, apperror.Transient("get order", err)
	}
	if !id.IsStaff() && o.UserID != id.ID {
		return models.Order{}, apperror.New(apperror.KindForbidden, "order belongs to another customer")
	}
	return o, nil
}

// History returns the status changes of an order, oldest first.
func (s *Service) History(ctx context.Context, id auth.Identity, orderID string) ([]models.OrderStatusChange, error) {
	if _, err := s.GetOrder(ctx, id, orderID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	h, err := s.repo.History(ctx, orderID)
	if err != nil {
		return nil, apperror.Transient("order history", err)
	}
	return h, nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.Warn("publish order event failed",
			zap.String("type", e.Type), zap.String("order_id", e.OrderID), zap.Error(err))
	}
}
