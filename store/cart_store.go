package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/models"
)

// CartStore keeps one cart row per identity with its ordered lines.
type CartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

// LoadLines returns the lines in insertion order. An identity without a cart has none.
func (s *CartStore) LoadLines(ctx context.Context, identityID string) ([]models.CartLine, error) {
	var c models.Cart
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("identity_id = ?", identityID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.Lines, nil
}

// SaveLines replaces the identity's line set in one transaction.
func (s *CartStore) SaveLines(ctx context.Context, identityID string, lines []models.CartLine) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Cart
		if err := tx.Where(models.Cart{IdentityID: identityID}).FirstOrCreate(&c).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", c.ID).Delete(&models.CartLine{}).Error; err != nil {
			return err
		}

		if len(lines) > 0 {
			rows := make([]models.CartLine, len(lines))
			for i, l := range lines {
				l.ID = 0
				l.CartID = c.ID
				l.Position = i
				rows[i] = l
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Model(&c).Update("updated_at", time.Now()).Error
	})
}
