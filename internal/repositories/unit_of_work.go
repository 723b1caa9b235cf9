package repositories

import (
	"context"

	"gorm.io/gorm"

	"inventory/internal/models"
)

// Repositories groups the repositories bound to one database handle.
type Repositories struct {
	Products ProductRepository
	Users    UserRepository
	Orders   OrderRepository
}

// UnitOfWork runs a function against repositories that share a single transaction.
// Either every write made through them commits or none does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

// GORMUnitOfWork is a GORM implementation of UnitOfWork.
type GORMUnitOfWork struct {
	db *gorm.DB
}

// NewGORMUnitOfWork creates a new instance of GORMUnitOfWork.
func NewGORMUnitOfWork(db *gorm.DB) *GORMUnitOfWork {
	return &GORMUnitOfWork{db: db}
}

// NewGORMRepositories builds all GORM repositories on the same handle.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products: NewGORMProductRepository(db),
		Users:    NewGORMUserRepository(db),
		Orders:   NewGORMOrderRepository(db),
	}
}

// Do begins a transaction, hands tx-bound repositories to fn and commits if fn returns nil.
// Errors returned by fn pass through untouched; a failed begin or commit becomes a StorageError.
func (u *GORMUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(NewGORMRepositories(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		// Rolled back because fn failed; report the original cause.
		return fnErr
	}
	return models.NewStorageError("commit transaction", err)
}
