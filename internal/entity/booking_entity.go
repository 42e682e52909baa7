package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingPaymentStatus mirrors the payment lifecycle of a booking.
type BookingPaymentStatus string

const (
	BookingPaymentStatusPending  BookingPaymentStatus = "pending"
	BookingPaymentStatusPaid     BookingPaymentStatus = "paid"
	BookingPaymentStatusFailed   BookingPaymentStatus = "failed"
	BookingPaymentStatusRefunded BookingPaymentStatus = "refunded"
)

// Payment methods the platform records on bookings. Card payments move
// through the payment gateway and are the only ones the settlement adapter
// can refund automatically.
const (
	PaymentMethodCard         = "card"
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
)

// IsGatewayPaymentMethod reports whether the method routed the original
// charge through the payment gateway.
func IsGatewayPaymentMethod(method string) bool {
	return method == PaymentMethodCard
}

// Booking is the refund engine's read model of a booking. The engine reads
// the financial fields at refund creation and writes back two denormalized
// fields: RefundStatus (a UI listing cache, not authoritative) and
// PaymentStatus (flipped to refunded on completion).
type Booking struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	CustomerID       *uuid.UUID
	TotalAmount      float64
	Currency         string
	CheckIn          time.Time
	CheckOut         time.Time
	PaymentMethod    string
	PaymentReference string
	PaymentStatus    BookingPaymentStatus
	RefundStatus     *RefundStatus
	CancelledAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
