package repositories

import (
	"errors"

	"gorm.io/gorm"

	"inventory/internal/models"
)

// ErrStockConflict is returned by the stock primitives when the conditional update matched no row.
var ErrStockConflict = errors.New("stock guard rejected update")

func notFoundOr(err error, subject string, id uint, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{Subject: subject, ID: id}
	}
	return models.NewStorageError(op, err)
}
