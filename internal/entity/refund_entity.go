package entity

import (
	"time"

	"github.com/Wollie333/vilo-sub013/pkg/policy"
	"github.com/google/uuid"
)

// RefundStatus represents the lifecycle state of a refund request.
type RefundStatus string

const (
	RefundStatusRequested   RefundStatus = "requested"
	RefundStatusUnderReview RefundStatus = "under_review"
	RefundStatusApproved    RefundStatus = "approved"
	RefundStatusRejected    RefundStatus = "rejected"
	RefundStatusProcessing  RefundStatus = "processing"
	RefundStatusCompleted   RefundStatus = "completed"
	RefundStatusFailed      RefundStatus = "failed"
)

// transitionSources maps each target status to the statuses a refund must be
// in for the transition to be legal. Review is optional: approval and
// rejection accept both requested and under_review.
var transitionSources = map[RefundStatus][]RefundStatus{
	RefundStatusUnderReview: {RefundStatusRequested},
	RefundStatusApproved:    {RefundStatusRequested, RefundStatusUnderReview},
	RefundStatusRejected:    {RefundStatusRequested, RefundStatusUnderReview},
	RefundStatusProcessing:  {RefundStatusApproved},
	RefundStatusCompleted:   {RefundStatusApproved, RefundStatusProcessing},
	RefundStatusFailed:      {RefundStatusProcessing},
}

// TransitionSources returns the statuses from which a refund may move to the
// given target status.
func TransitionSources(to RefundStatus) []RefundStatus {
	return transitionSources[to]
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to RefundStatus) bool {
	for _, s := range transitionSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status is an end-of-life marker. Terminal
// refunds are financial records and are never deleted or reopened.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusRejected || s == RefundStatusCompleted || s == RefundStatusFailed
}

func ValidRefundStatuses() []RefundStatus {
	return []RefundStatus{
		RefundStatusRequested,
		RefundStatusUnderReview,
		RefundStatusApproved,
		RefundStatusRejected,
		RefundStatusProcessing,
		RefundStatusCompleted,
		RefundStatusFailed,
	}
}

func IsValidRefundStatus(status string) bool {
	for _, s := range ValidRefundStatuses() {
		if string(s) == status {
			return true
		}
	}
	return false
}

// Refund is the central entity of the refund lifecycle. Identity is
// (TenantID, ID); exactly one refund exists per booking. Eligibility fields
// are fixed at creation, the rest mutate only through workflow transitions.
type Refund struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	BookingID  uuid.UUID
	CustomerID *uuid.UUID

	OriginalAmount           float64
	EligibleAmount           float64
	Currency                 string
	RefundPercentage         float64
	DaysBeforeCheckin        int
	PolicyApplied            policy.CancellationPolicyTier
	PaymentMethod            string
	OriginalPaymentReference string

	Status          RefundStatus
	ApprovedAmount  *float64
	ProcessedAmount *float64
	RefundReference string
	RejectionReason string
	StaffNotes      string
	OverrideReason  string
	FailureReason   string

	RequestedAt time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID
	RejectedAt  *time.Time
	RejectedBy  *uuid.UUID
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID
	CompletedAt *time.Time
	FailedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayoutAmount is the amount settlement sends to the gateway: the reviewer's
// approved amount when set, otherwise the policy-computed eligible amount.
func (r *Refund) PayoutAmount() float64 {
	if r.ApprovedAmount != nil {
		return *r.ApprovedAmount
	}
	return r.EligibleAmount
}

// GatewayEligible reports whether the refund can be settled through the
// payment gateway: funds moved through it originally and the transaction
// reference survived.
func (r *Refund) GatewayEligible() bool {
	return IsGatewayPaymentMethod(r.PaymentMethod) && r.OriginalPaymentReference != ""
}
