package contract

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
)

// RefundHistoryRepository is append-only: entries are created and read,
// never updated or deleted.
type RefundHistoryRepository interface {
	Append(ctx context.Context, entry *entity.RefundStatusHistory) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundStatusHistory, error)
}
