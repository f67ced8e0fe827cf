package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/models"
)

// OrderRepository persists orders, their items and the status history.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusChange{
			OrderID:   o.ID,
			Axis:      models.AxisOrder,
			To:        string(o.OrderStatus),
			Actor:     o.UserID,
			CreatedAt: o.CreatedAt,
		}).Error
	})
}

func (r *OrderRepository) Get(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return models.Order{}, notFound(err, "order")
	}
	return o, nil
}

func (r *OrderRepository) FindByCheckoutToken(ctx context.Context, userID, token string) (models.Order, error) {
	var o models.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ? AND checkout_token = ?", userID, token).
		First(&o).Error
	if err != nil {
		return models.Order{}, notFound(err, "order")
	}
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context, userID string) ([]models.Order, error) {
	q := preloadItems(r.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) CompareAndSetOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, actor string) (bool, error) {
	return r.compareAndSet(ctx, id, models.AxisOrder, "order_status", string(from), string(to), actor)
}

func (r *OrderRepository) CompareAndSetPaymentStatus(ctx context.Context, id string, from, to models.PaymentStatus, actor string) (bool, error) {
	return r.compareAndSet(ctx, id, models.AxisPayment, "payment_status", string(from), string(to), actor)
}

// compareAndSet updates column only while it still holds from, bumping the
// version and appending history in the same transaction.
func (r *OrderRepository) compareAndSet(ctx context.Context, id, axis, column, from, to, actor string) (bool, error) {
	swapped := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND "+column+" = ?", id, from).
			Updates(map[string]interface{}{
				column:       to,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return notFound(gorm.ErrRecordNotFound, "order")
			}
			return nil
		}
		swapped = true
		return tx.Create(&models.OrderStatusChange{
			OrderID:   id,
			Axis:      axis,
			From:      from,
			To:        to,
			Actor:     actor,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func (r *OrderRepository) History(ctx context.Context, id string) ([]models.OrderStatusChange, error) {
	var h []models.OrderStatusChange
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (r *OrderRepository) MarkCartCleared(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("cart_cleared", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "order")
	}
	return nil
}
