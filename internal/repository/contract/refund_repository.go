package contract

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Refund, error)

	// UpdateTransition persists a workflow transition with a compare-and-swap
	// guard: the row is only written while its status is still one of
	// expectedFrom. Returns false when another transition won the race.
	UpdateTransition(ctx context.Context, refund *entity.Refund, expectedFrom []entity.RefundStatus) (bool, error)
}
