package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
)

type MenuStore struct {
	db *gorm.DB
}

func NewMenuStore(db *gorm.DB) *MenuStore {
	return &MenuStore{db: db}
}

// GetItem returns an item whether or not it is available.
func (s *MenuStore) GetItem(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return models.MenuItem{}, notFound(err, "menu item")
	}
	return item, nil
}

// MenuFilter narrows ListItems.
type MenuFilter struct {
	Category           string
	IncludeUnavailable bool
}

func (s *MenuStore) ListItems(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx).Order("category ASC, name ASC")
	if !f.IncludeUnavailable {
		q = q.Where("available = ?", true)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Categories lists the distinct categories of available items.
func (s *MenuStore) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.db.WithContext(ctx).Model(&models.MenuItem{}).
		Where("available = ?", true).
		Distinct().Order("category ASC").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *MenuStore) CreateItem(ctx context.Context, item *models.MenuItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// MenuItemUpdate holds the fields a staff edit may change. Nil fields are left alone.
type MenuItemUpdate struct {
	Name        *string
	Description *string
	Price       *money.Money
	Category    *string
	ImageURL    *string
	Available   *bool
}

func (s *MenuStore) UpdateItem(ctx context.Context, id string, u MenuItemUpdate) (models.MenuItem, error) {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Category != nil {
		fields["category"] = strings.TrimSpace(*u.Category)
	}
	if u.ImageURL != nil {
		fields["image_url"] = *u.ImageURL
	}
	if u.Available != nil {
		fields["available"] = *u.Available
	}

	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFound(err, "menu item")
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&item).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&item, "id = ?", id).Error
	})
	return item, err
}

// DisableItem marks an item unavailable. Orders keep their own copy of it.
func (s *MenuStore) DisableItem(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Update("available", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "menu item")
	}
	return nil
}

// UpsertItems inserts items without an existing id and updates the rest.
func (s *MenuStore) UpsertItems(ctx context.Context, items []models.MenuItem) (created, updated int, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			var count int64
			if items[i].ID != "" {
				if err := tx.Model(&models.MenuItem{}).Where("id = ?", items[i].ID).Count(&count).Error; err != nil {
					return err
				}
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "category", "image_url", "available", "updated_at"}),
			}).Create(&items[i]).Error; err != nil {
				return err
			}
			if count > 0 {
				updated++
			} else {
				created++
			}
		}
		return nil
	})
	return created, updated, err
}

// CountItems reports how many menu items exist, available or not.
func (s *MenuStore) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.MenuItem{}).Count(&n).Error
	return n, err
}
