package contract

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
)

type BookingRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Booking, error)

	// UpdateRefundStatus writes the denormalized refund-status mirror onto
	// the booking row. A one-way cache for listings, not authoritative.
	UpdateRefundStatus(ctx context.Context, booking *entity.Booking, status entity.RefundStatus) error

	// UpdatePaymentStatus records the booking's payment lifecycle change
	// (flipped to refunded when a refund completes).
	UpdatePaymentStatus(ctx context.Context, booking *entity.Booking, status entity.BookingPaymentStatus) error
}
