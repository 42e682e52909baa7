package dto

import (
	"time"

	"github.com/Wollie333/vilo-sub013/pkg/policy"
	"github.com/google/uuid"
)

// Actor identifies the staff member driving a workflow transition, taken
// from the authenticated request.
type Actor struct {
	Id   uuid.UUID
	Name string
}

// --- Workflow requests ---

type CreateRefundRequest struct {
	BookingId uuid.UUID `json:"booking_id" validate:"required"`
}

type ReviewRefundRequest struct {
	StaffNotes string `json:"staff_notes,omitempty"`
}

type ApproveRefundRequest struct {
	Amount         float64 `json:"amount" validate:"gte=0"`
	OverrideReason string  `json:"override_reason,omitempty"`
	StaffNotes     string  `json:"staff_notes,omitempty"`
}

type RejectRefundRequest struct {
	Reason     string `json:"reason" validate:"required"`
	StaffNotes string `json:"staff_notes,omitempty"`
}

type CompleteRefundRequest struct {
	Amount          float64 `json:"amount" validate:"gte=0"`
	RefundReference string  `json:"refund_reference,omitempty"`
}

type FailRefundRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// --- Listing / reporting ---

type RefundListFilter struct {
	Status    string     `query:"status"`
	BookingId *uuid.UUID `query:"booking_id"`
	From      *time.Time `query:"from"`
	To        *time.Time `query:"to"`
	Page      int        `query:"page"`
	Limit     int        `query:"limit"`
}

type RefundResponse struct {
	Id                uuid.UUID                     `json:"id"`
	BookingId         uuid.UUID                     `json:"booking_id"`
	CustomerId        *uuid.UUID                    `json:"customer_id,omitempty"`
	Status            string                        `json:"status"`
	OriginalAmount    float64                       `json:"original_amount"`
	EligibleAmount    float64                       `json:"eligible_amount"`
	ApprovedAmount    *float64                      `json:"approved_amount,omitempty"`
	ProcessedAmount   *float64                      `json:"processed_amount,omitempty"`
	Currency          string                        `json:"currency"`
	RefundPercentage  float64                       `json:"refund_percentage"`
	DaysBeforeCheckin int                           `json:"days_before_checkin"`
	PolicyApplied     policy.CancellationPolicyTier `json:"policy_applied"`
	PaymentMethod     string                        `json:"payment_method"`
	RefundReference   string                        `json:"refund_reference,omitempty"`
	RejectionReason   string                        `json:"rejection_reason,omitempty"`
	StaffNotes        string                        `json:"staff_notes,omitempty"`
	OverrideReason    string                        `json:"override_reason,omitempty"`
	FailureReason     string                        `json:"failure_reason,omitempty"`
	RequestedAt       time.Time                     `json:"requested_at"`
	ReviewedAt        *time.Time                    `json:"reviewed_at,omitempty"`
	ApprovedAt        *time.Time                    `json:"approved_at,omitempty"`
	RejectedAt        *time.Time                    `json:"rejected_at,omitempty"`
	ProcessedAt       *time.Time                    `json:"processed_at,omitempty"`
	CompletedAt       *time.Time                    `json:"completed_at,omitempty"`
	FailedAt          *time.Time                    `json:"failed_at,omitempty"`
}

type RefundHistoryResponse struct {
	Id             uuid.UUID  `json:"id"`
	RefundId       uuid.UUID  `json:"refund_id"`
	PreviousStatus *string    `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	ChangedBy      *uuid.UUID `json:"changed_by,omitempty"`
	ChangedByName  string     `json:"changed_by_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RefundStatsResponse aggregates the tenant's refunds for the admin
// dashboard. The monetary totals follow fixed fallback rules; dashboards
// depend on them exactly.
type RefundStatsResponse struct {
	CountsByStatus       map[string]int `json:"counts_by_status"`
	TotalRequestedAmount float64        `json:"total_requested_amount"`
	TotalApprovedAmount  float64        `json:"total_approved_amount"`
	TotalProcessedAmount float64        `json:"total_processed_amount"`
	CompletedThisMonth   float64        `json:"completed_this_month"`
}
