package unitofwork

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
)

// UnitOfWork is the transaction boundary of the refund engine. A workflow
// transition updates the refund row, appends its history entry and mirrors
// the booking inside one unit; the history write is durable before the
// transition reports success.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RefundRepository() contract.RefundRepository
	RefundHistoryRepository() contract.RefundHistoryRepository
	BookingRepository() contract.BookingRepository
	TenantConfigRepository() contract.TenantConfigRepository
}
