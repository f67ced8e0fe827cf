// Package cart keeps each identity's cart and derives its totals and bill split.
//
// Every operation takes the identity explicitly. A cart belongs to exactly one
// identity; switching identity swaps the visible line set and never merges.
package cart

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
)

// DefaultTaxRateBps is 5%.
const DefaultTaxRateBps int64 = 500

const (
	// MaxQuantity bounds a single cart line.
	MaxQuantity = 99
	// MaxSplitCount bounds the number of payers of one bill.
	MaxSplitCount int64 = 100
)

// Store persists the ordered line set of an identity. Save replaces the whole set.
type Store interface {
	LoadLines(ctx context.Context, identityID string) ([]models.CartLine, error)
	SaveLines(ctx context.Context, identityID string, lines []models.CartLine) error
}

// Catalog resolves menu items. Missing items fail with apperror.ErrNotFound.
type Catalog interface {
	GetItem(ctx context.Context, id string) (models.MenuItem, error)
}

// Totals is the derived bill of a cart.
type Totals struct {
	Subtotal   money.Money `json:"subtotal"`
	Tax        money.Money `json:"tax"`
	GrandTotal money.Money `json:"grand_total"`
	TaxRateBps int64       `json:"tax_rate_bps"`
}

// SplitSpec divides a grand total between SplitCount payers. Shares sums to
// GrandTotal exactly; the first Remainder shares carry one extra minor unit.
type SplitSpec struct {
	SplitCount int64         `json:"split_count"`
	GrandTotal money.Money   `json:"grand_total"`
	PerPerson  money.Money   `json:"per_person_amount"`
	Remainder  int64         `json:"remainder"`
	Shares     []money.Money `json:"shares"`
}

// Snapshot is a detached copy of a cart taken for checkout.
type Snapshot struct {
	IdentityID string
	Lines      []models.CartLine
	TakenAt    time.Time
}

type Aggregator struct {
	store   Store
	catalog Catalog
	log     *zap.Logger
	now     func() time.Time
}

func New(store Store, catalog Catalog, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{store: store, catalog: catalog, log: log, now: time.Now}
}

// AddItem adds one of menuItemID, inserting a line at the end when absent.
func (a *Aggregator) AddItem(ctx context.Context, id auth.Identity, menuItemID string) ([]models.CartLine, error) {
	item, err := a.catalog.GetItem(ctx, menuItemID)
	if err != nil {
		return nil, apperror.Transient("get menu item", err)
	}
	if !item.Available {
		return nil, apperror.New(apperror.KindNotFound, "menu item is not available")
	}

	return a.mutate(ctx, id, func(lines []models.CartLine) ([]models.CartLine, error) {
		if i := indexOf(lines, menuItemID); i >= 0 {
			if lines[i].Quantity >= MaxQuantity {
				return nil, errQuantityLimit
			}
			lines[i].Quantity++
			return lines, nil
		}
		return append(lines, models.CartLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   1,
			AddedAt:    a.now(),
		}), nil
	})
}

// RemoveItem deletes the line for menuItemID. Removing an absent line is a no-op.
func (a *Aggregator) RemoveItem(ctx context.Context, id auth.Identity, menuItemID string) ([]models.CartLine, error) {
	return a.mutate(ctx, id, func(lines []models.CartLine) ([]models.CartLine, error) {
		if i := indexOf(lines, menuItemID); i >= 0 {
			return append(lines[:i], lines[i+1:]...), nil
		}
		return lines, nil
	})
}

func (a *Aggregator) IncreaseQuantity(ctx context.Context, id auth.Identity, menuItemID string) ([]models.CartLine, error) {
	return a.mutate(ctx, id, func(lines []models.CartLine) ([]models.CartLine, error) {
		i := indexOf(lines, menuItemID)
		if i < 0 {
			return nil, errLineNotFound
		}
		if lines[i].Quantity >= MaxQuantity {
			return nil, errQuantityLimit
		}
		lines[i].Quantity++
		return lines, nil
	})
}

// DecreaseQuantity subtracts one; a line at quantity 1 is removed.
func (a *Aggregator) DecreaseQuantity(ctx context.Context, id auth.Identity, menuItemID string) ([]models.CartLine, error) {
	return a.mutate(ctx, id, func(lines []models.CartLine) ([]models.CartLine, error) {
		i := indexOf(lines, menuItemID)
		if i < 0 {
			return nil, errLineNotFound
		}
		if lines[i].Quantity <= 1 {
			return append(lines[:i], lines[i+1:]...), nil
		}
		lines[i].Quantity--
		return lines, nil
	})
}

// SetQuantity sets an existing line to n. n == 0 removes it; n < 0 or above
// MaxQuantity is InvalidQuantity.
func (a *Aggregator) SetQuantity(ctx context.Context, id auth.Identity, menuItemID string, n int) ([]models.CartLine, error) {
	if n < 0 {
		return nil, apperror.New(apperror.KindInvalidQuantity, "quantity must not be negative")
	}
	if n > MaxQuantity {
		return nil, errQuantityLimit
	}
	if n == 0 {
		return a.RemoveItem(ctx, id, menuItemID)
	}
	return a.mutate(ctx, id, func(lines []models.CartLine) ([]models.CartLine, error) {
		i := indexOf(lines, menuItemID)
		if i < 0 {
			return nil, errLineNotFound
		}
		lines[i].Quantity = n
		return lines, nil
	})
}

func (a *Aggregator) Clear(ctx context.Context, id auth.Identity) error {
	if !id.Valid() {
		return apperror.ErrUnauthorized
	}
	if err := a.store.SaveLines(ctx, id.ID, nil); err != nil {
		return apperror.Transient("clear cart", err)
	}
	return nil
}

// Lines returns the identity's cart in insertion order. A cart never accessed is empty.
func (a *Aggregator) Lines(ctx context.Context, id auth.Identity) ([]models.CartLine, error) {
	if !id.Valid() {
		return nil, apperror.ErrUnauthorized
	}
	lines, err := a.store.LoadLines(ctx, id.ID)
	if err != nil {
		return nil, apperror.Transient("load cart", err)
	}
	return copyLines(lines), nil
}

func (a *Aggregator) Subtotal(ctx context.Context, id auth.Identity) (money.Money, error) {
	lines, err := a.Lines(ctx, id)
	if err != nil {
		return 0, err
	}
	return Subtotal(lines)
}

func (a *Aggregator) Total(ctx context.Context, id auth.Identity, taxRateBps int64) (Totals, error) {
	lines, err := a.Lines(ctx, id)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(lines, taxRateBps)
}

func (a *Aggregator) ComputeSplit(ctx context.Context, id auth.Identity, splitCount int64, taxRateBps int64) (SplitSpec, error) {
	if err := checkSplitCount(splitCount); err != nil {
		return SplitSpec{}, err
	}
	totals, err := a.Total(ctx, id, taxRateBps)
	if err != nil {
		return SplitSpec{}, err
	}
	return Split(totals.GrandTotal, splitCount)
}

// SwitchIdentity makes to the active identity and returns its persisted cart.
// The cart of from is left as it was; nothing is carried across.
func (a *Aggregator) SwitchIdentity(ctx context.Context, from, to auth.Identity) ([]models.CartLine, error) {
	lines, err := a.Lines(ctx, to)
	if err != nil {
		return nil, err
	}
	if from.Valid() && from.ID != to.ID {
		a.log.Info("cart identity switched",
			zap.String("from", from.ID), zap.String("to", to.ID), zap.Int("lines", len(lines)))
	}
	return lines, nil
}

// Snapshot captures a deep copy of the cart for order creation.
func (a *Aggregator) Snapshot(ctx context.Context, id auth.Identity) (Snapshot, error) {
	lines, err := a.Lines(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{IdentityID: id.ID, Lines: lines, TakenAt: a.now()}, nil
}

func (a *Aggregator) mutate(ctx context.Context, id auth.Identity, fn func([]models.CartLine) ([]models.CartLine, error)) ([]models.CartLine, error) {
	lines, err := a.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(lines)
	if err != nil {
		return nil, err
	}
	for i := range next {
		next[i].Position = i
	}
	if err := a.store.SaveLines(ctx, id.ID, next); err != nil {
		return nil, apperror.Transient("save cart", err)
	}
	return copyLines(next), nil
}

var (
	errLineNotFound  = apperror.New(apperror.KindNotFound, "item is not in the cart")
	errQuantityLimit = apperror.New(apperror.KindInvalidQuantity, fmt.Sprintf("quantity must not exceed %d", MaxQuantity))
)

func amountOutOfRange(err error) error {
	return apperror.Wrap(apperror.KindInvalidQuantity, "cart total is out of range", err)
}

// Subtotal sums unit price times quantity in minor units.
func Subtotal(lines []models.CartLine) (money.Money, error) {
	var total money.Money
	for _, l := range lines {
		lt, err := l.LineTotal()
		if err != nil {
			return 0, amountOutOfRange(err)
		}
		if total, err = money.Add(total, lt); err != nil {
			return 0, amountOutOfRange(err)
		}
	}
	return total, nil
}

// ComputeTotals applies taxRateBps (basis points) to the subtotal, rounding half-up.
func ComputeTotals(lines []models.CartLine, taxRateBps int64) (Totals, error) {
	sub, err := Subtotal(lines)
	if err != nil {
		return Totals{}, err
	}
	tax, err := money.Percentage(sub, taxRateBps, 10000)
	if err != nil {
		return Totals{}, amountOutOfRange(err)
	}
	grand, err := money.Add(sub, tax)
	if err != nil {
		return Totals{}, amountOutOfRange(err)
	}
	return Totals{Subtotal: sub, Tax: tax, GrandTotal: grand, TaxRateBps: taxRateBps}, nil
}

func checkSplitCount(n int64) error {
	if n < 1 {
		return apperror.New(apperror.KindInvalidSplitCount, "split count must be at least 1")
	}
	if n > MaxSplitCount {
		return apperror.New(apperror.KindInvalidSplitCount, fmt.Sprintf("split count must not exceed %d", MaxSplitCount))
	}
	return nil
}

// Split divides grandTotal between splitCount payers, at most MaxSplitCount.
func Split(grandTotal money.Money, splitCount int64) (SplitSpec, error) {
	if err := checkSplitCount(splitCount); err != nil {
		return SplitSpec{}, err
	}
	_, rem, err := money.DivideEvenly(grandTotal, splitCount)
	if err != nil {
		return SplitSpec{}, apperror.Wrap(apperror.KindInvalidInput, "split total", err)
	}
	shares, err := money.Shares(grandTotal, splitCount)
	if err != nil {
		return SplitSpec{}, apperror.Wrap(apperror.KindInvalidInput, "split total", err)
	}
	return SplitSpec{
		SplitCount: splitCount,
		GrandTotal: grandTotal,
		PerPerson:  shares[0],
		Remainder:  rem,
		Shares:     shares,
	}, nil
}

func indexOf(lines []models.CartLine, menuItemID string) int {
	for i, l := range lines {
		if l.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func copyLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}
