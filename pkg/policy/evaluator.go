package policy

import (
	"math"
	"sort"
	"time"
)

// CancellationPolicyTier maps a minimum number of days before check-in to the
// refund percentage a cancellation in that window is entitled to. Tiers are
// tenant configuration and arrive in whatever order the tenant saved them.
type CancellationPolicyTier struct {
	DaysBefore       int     `json:"days_before"`
	RefundPercentage float64 `json:"refund_percentage" validate:"gte=0,lte=100"`
	Label            string  `json:"label"`
}

// RefundCalculation is the outcome of evaluating a cancellation against the
// tenant's policy tiers. It is computed once at refund creation and stored as
// a historical fact; later policy edits never change it.
type RefundCalculation struct {
	OriginalAmount    float64                `json:"original_amount"`
	EligibleAmount    float64                `json:"eligible_amount"`
	RefundPercentage  float64                `json:"refund_percentage"`
	DaysBeforeCheckIn int                    `json:"days_before_check_in"`
	PolicyApplied     CancellationPolicyTier `json:"policy_applied"`
	CancellationDate  time.Time              `json:"cancellation_date"`
}

// NoRefundTier is the synthetic tier applied when no configured tier matches.
func NoRefundTier() CancellationPolicyTier {
	return CancellationPolicyTier{
		DaysBefore:       0,
		RefundPercentage: 0,
		Label:            "No refund available",
	}
}

// CalculateEligibleRefund evaluates the cancellation policy for a booking.
//
// Days before check-in is the ceiling of the interval between cancellation and
// check-in; cancelling after check-in yields a negative value. Tiers are
// stable-sorted descending by DaysBefore and the first tier satisfying
// DaysBefore <= daysBeforeCheckIn wins, so of all the tiers the cancellation
// still qualifies for, the most generous threshold applies. Duplicate
// DaysBefore values keep their configured order.
//
// Absence of a qualifying tier is not an error: the synthetic zero-percent
// tier applies and the eligible amount is 0.
func CalculateEligibleRefund(bookingAmount float64, checkIn time.Time, tiers []CancellationPolicyTier, cancelledAt time.Time) RefundCalculation {
	daysBefore := daysBetween(cancelledAt, checkIn)

	sorted := make([]CancellationPolicyTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DaysBefore > sorted[j].DaysBefore
	})

	applied := NoRefundTier()
	for _, tier := range sorted {
		if tier.DaysBefore <= daysBefore {
			applied = tier
			break
		}
	}

	return RefundCalculation{
		OriginalAmount:    bookingAmount,
		EligibleAmount:    RoundAmount(bookingAmount * applied.RefundPercentage / 100),
		RefundPercentage:  applied.RefundPercentage,
		DaysBeforeCheckIn: daysBefore,
		PolicyApplied:     applied,
		CancellationDate:  cancelledAt,
	}
}

// RoundAmount rounds a monetary amount to two decimal places.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

func daysBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
