package unitofwork

import "context"

// RepositoryFactory hands out a fresh, request-scoped UnitOfWork.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
