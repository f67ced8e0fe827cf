// Package store implements the cart, order, menu, user and QR table stores on gorm.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/junaidrashid-git/canteen-api/apperror"
)

// notFound maps gorm's missing-row error to apperror NotFound and leaves others as they are.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, what+" not found", err)
	}
	return err
}
