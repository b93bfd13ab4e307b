// Package unitofwork groups repository calls into one database transaction.
package unitofwork

import (
	"context"

	"voice-shopping-be/internal/repository/contract"
)

// RepositoryFactory hands out a fresh UnitOfWork per operation
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	// Rollback is a no-op once Commit has succeeded, so it can be deferred
	Rollback() error

	ProductRepository() contract.ProductRepository
}
