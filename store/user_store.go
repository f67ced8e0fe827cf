package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/models"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts u. A taken email is reported as InvalidInput.
func (s *UserStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", e).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.New(apperror.KindInvalidInput, "email already registered")
		}
	}
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.New(apperror.KindInvalidInput, "email already registered")
	}
	return err
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	e := strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", e).First(&u).Error; err != nil {
		return models.User{}, notFound(err, "user")
	}
	return u, nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return models.User{}, notFound(err, "user")
	}
	return u, nil
}

// UpdateProfile changes the name and phone of a registered user. Nil fields are left alone.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, name, phone *string) (models.User, error) {
	fields := map[string]interface{}{}
	if name != nil {
		fields["name"] = strings.TrimSpace(*name)
	}
	if phone != nil {
		fields["phone"] = strings.TrimSpace(*phone)
	}

	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return notFound(err, "user")
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&u, "id = ?", id).Error
	})
	return u, err
}
