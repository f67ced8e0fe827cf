package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/models"
)

type QRStore struct {
	db *gorm.DB
}

func NewQRStore(db *gorm.DB) *QRStore {
	return &QRStore{db: db}
}

func (s *QRStore) SaveTable(ctx context.Context, t *models.QRTable) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *QRStore) ListTables(ctx context.Context) ([]models.QRTable, error) {
	var tables []models.QRTable
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *QRStore) GetTable(ctx context.Context, id uint) (models.QRTable, error) {
	var t models.QRTable
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return models.QRTable{}, notFound(err, "qr code")
	}
	return t, nil
}

// DeleteTable soft-deletes the row; the caller removes the image file.
func (s *QRStore) DeleteTable(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.QRTable{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "qr code")
	}
	return nil
}
