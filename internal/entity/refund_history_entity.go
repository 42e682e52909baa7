package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatusHistory is one append-only audit entry per workflow transition.
// PreviousStatus is nil for the creation entry. Entries are never updated or
// deleted.
type RefundStatusHistory struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	RefundID       uuid.UUID
	PreviousStatus *RefundStatus
	NewStatus      RefundStatus
	ChangedBy      *uuid.UUID
	ChangedByName  string
	Notes          string
	CreatedAt      time.Time
}
