package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from RefundStatus
		to   RefundStatus
		want bool
	}{
		{"requested to under_review", RefundStatusRequested, RefundStatusUnderReview, true},
		{"requested to approved skips review", RefundStatusRequested, RefundStatusApproved, true},
		{"requested to rejected skips review", RefundStatusRequested, RefundStatusRejected, true},
		{"under_review to approved", RefundStatusUnderReview, RefundStatusApproved, true},
		{"under_review to rejected", RefundStatusUnderReview, RefundStatusRejected, true},
		{"approved to processing", RefundStatusApproved, RefundStatusProcessing, true},
		{"approved to completed for manual refunds", RefundStatusApproved, RefundStatusCompleted, true},
		{"processing to completed", RefundStatusProcessing, RefundStatusCompleted, true},
		{"processing to failed", RefundStatusProcessing, RefundStatusFailed, true},

		{"requested to processing", RefundStatusRequested, RefundStatusProcessing, false},
		{"requested to completed", RefundStatusRequested, RefundStatusCompleted, false},
		{"approved to failed", RefundStatusApproved, RefundStatusFailed, false},
		{"rejected is terminal", RefundStatusRejected, RefundStatusUnderReview, false},
		{"completed is terminal", RefundStatusCompleted, RefundStatusProcessing, false},
		{"failed is terminal", RefundStatusFailed, RefundStatusProcessing, false},
		{"no self transition", RefundStatusProcessing, RefundStatusProcessing, false},
		{"nothing transitions to requested", RefundStatusUnderReview, RefundStatusRequested, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, RefundStatusRejected.IsTerminal())
	assert.True(t, RefundStatusCompleted.IsTerminal())
	assert.True(t, RefundStatusFailed.IsTerminal())
	assert.False(t, RefundStatusRequested.IsTerminal())
	assert.False(t, RefundStatusApproved.IsTerminal())
	assert.False(t, RefundStatusProcessing.IsTerminal())
}

func TestPayoutAmount(t *testing.T) {
	r := &Refund{EligibleAmount: 500}
	assert.Equal(t, 500.0, r.PayoutAmount())

	approved := 750.0
	r.ApprovedAmount = &approved
	assert.Equal(t, 750.0, r.PayoutAmount())
}

func TestGatewayEligible(t *testing.T) {
	r := &Refund{PaymentMethod: PaymentMethodCard, OriginalPaymentReference: "txn_1"}
	assert.True(t, r.GatewayEligible())

	assert.False(t, (&Refund{PaymentMethod: PaymentMethodCash, OriginalPaymentReference: "txn_1"}).GatewayEligible())
	assert.False(t, (&Refund{PaymentMethod: PaymentMethodCard}).GatewayEligible())
}
