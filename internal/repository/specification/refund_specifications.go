package specification

import (
	"time"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByBooking filters refunds by their originating booking.
type ByBooking struct {
	BookingID uuid.UUID
}

func (s ByBooking) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("booking_id = ?", s.BookingID)
}

// StatusIs filters refunds in one status.
type StatusIs struct {
	Status entity.RefundStatus
}

func (s StatusIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

// StatusIn filters refunds in any of the given statuses.
type StatusIn struct {
	Statuses []entity.RefundStatus
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}

// RequestedBefore filters refunds requested before the cutoff. Used by the
// escalation query to surface stale requests.
type RequestedBefore struct {
	Cutoff time.Time
}

func (s RequestedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requested_at < ?", s.Cutoff)
}

// RequestedBetween filters refunds by request date range.
type RequestedBetween struct {
	From time.Time
	To   time.Time
}

func (s RequestedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requested_at >= ? AND requested_at <= ?", s.From, s.To)
}

// ForRefund filters history entries by refund.
type ForRefund struct {
	RefundID uuid.UUID
}

func (s ForRefund) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("refund_id = ?", s.RefundID)
}
