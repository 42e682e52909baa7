package implementation

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/model"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
	"gorm.io/gorm"
)

type bookingRepositoryImpl struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) contract.BookingRepository {
	return &bookingRepositoryImpl{db: db}
}

func (r *bookingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Booking, error) {
	var modelBooking model.Booking
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&modelBooking).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&modelBooking), nil
}

func (r *bookingRepositoryImpl) UpdateRefundStatus(ctx context.Context, booking *entity.Booking, status entity.RefundStatus) error {
	return r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND tenant_id = ?", booking.ID, booking.TenantID).
		Update("refund_status", string(status)).Error
}

func (r *bookingRepositoryImpl) UpdatePaymentStatus(ctx context.Context, booking *entity.Booking, status entity.BookingPaymentStatus) error {
	return r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND tenant_id = ?", booking.ID, booking.TenantID).
		Update("payment_status", string(status)).Error
}

func (r *bookingRepositoryImpl) mapToEntity(mb *model.Booking) *entity.Booking {
	var refundStatus *entity.RefundStatus
	if mb.RefundStatus != nil {
		s := entity.RefundStatus(*mb.RefundStatus)
		refundStatus = &s
	}

	return &entity.Booking{
		ID:               mb.ID,
		TenantID:         mb.TenantID,
		CustomerID:       mb.CustomerID,
		TotalAmount:      mb.TotalAmount,
		Currency:         mb.Currency,
		CheckIn:          mb.CheckIn,
		CheckOut:         mb.CheckOut,
		PaymentMethod:    mb.PaymentMethod,
		PaymentReference: mb.PaymentReference,
		PaymentStatus:    entity.BookingPaymentStatus(mb.PaymentStatus),
		RefundStatus:     refundStatus,
		CancelledAt:      mb.CancelledAt,
		CreatedAt:        mb.CreatedAt,
		UpdatedAt:        mb.UpdatedAt,
	}
}
