package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/dto"
	"github.com/Wollie333/vilo-sub013/internal/entity"
	refundEvents "github.com/Wollie333/vilo-sub013/internal/events"
	"github.com/Wollie333/vilo-sub013/internal/pkg/apperrors"
	"github.com/Wollie333/vilo-sub013/internal/pkg/logger"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
	"github.com/Wollie333/vilo-sub013/internal/repository/unitofwork"
	"github.com/Wollie333/vilo-sub013/pkg/gateway"
	"github.com/Wollie333/vilo-sub013/pkg/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IRefundService interface {
	CreateFromCancellation(ctx context.Context, tenantId, bookingId uuid.UUID) (*entity.Refund, error)

	MarkUnderReview(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.ReviewRefundRequest) (*entity.Refund, error)
	Approve(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.ApproveRefundRequest) (*entity.Refund, error)
	Reject(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.RejectRefundRequest) (*entity.Refund, error)
	MarkProcessing(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor) (*entity.Refund, error)
	Complete(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.CompleteRefundRequest) (*entity.Refund, error)
	Fail(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.FailRefundRequest) (*entity.Refund, error)

	ProcessGatewayRefund(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor) (*entity.Refund, error)

	GetRefunds(ctx context.Context, tenantId uuid.UUID, filter *dto.RefundListFilter) ([]*entity.Refund, error)
	GetRefundById(ctx context.Context, tenantId, refundId uuid.UUID) (*entity.Refund, error)
	GetStatusHistory(ctx context.Context, tenantId, refundId uuid.UUID) ([]*entity.RefundStatusHistory, error)
	GetStats(ctx context.Context, tenantId uuid.UUID) (*dto.RefundStatsResponse, error)
	GetPendingEscalation(ctx context.Context, tenantId uuid.UUID, hoursThreshold int) ([]*entity.Refund, error)
}

type refundService struct {
	uowFactory    unitofwork.RepositoryFactory
	tenantConfigs contract.TenantConfigRepository
	gatewayClient gateway.Client
	publisher     refundEvents.Publisher
	logger        logger.ILogger

	// One mutex per refund id serializes concurrent transitions in-process;
	// the store's status-guarded update is the cross-process backstop.
	locks sync.Map
}

func NewRefundService(
	uowFactory unitofwork.RepositoryFactory,
	tenantConfigs contract.TenantConfigRepository,
	gatewayClient gateway.Client,
	publisher refundEvents.Publisher,
	logger logger.ILogger,
) IRefundService {
	return &refundService{
		uowFactory:    uowFactory,
		tenantConfigs: tenantConfigs,
		gatewayClient: gatewayClient,
		publisher:     publisher,
		logger:        logger,
	}
}

func (s *refundService) lockFor(refundId uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(refundId, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// CreateFromCancellation opens the refund lifecycle for a cancelled booking.
// Eligibility is computed once here from the tenant's cancellation policy and
// frozen onto the refund; later policy edits do not touch it.
func (s *refundService) CreateFromCancellation(ctx context.Context, tenantId, bookingId uuid.UUID) (*entity.Refund, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	booking, err := uow.BookingRepository().FindOne(ctx,
		specification.ByID{ID: bookingId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking %s not found", bookingId)
	}
	if booking.CancelledAt == nil {
		return nil, apperrors.Validation("booking %s is not cancelled", bookingId)
	}

	existing, err := uow.RefundRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.ByBooking{BookingID: bookingId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("a refund already exists for booking %s", bookingId)
	}

	var tiers []policy.CancellationPolicyTier
	cfg, err := s.tenantConfigs.FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		tiers = cfg.CancellationPolicy
	}

	calc := policy.CalculateEligibleRefund(booking.TotalAmount, booking.CheckIn, tiers, *booking.CancelledAt)

	now := time.Now()
	refund := &entity.Refund{
		ID:                       uuid.New(),
		TenantID:                 tenantId,
		BookingID:                booking.ID,
		CustomerID:               booking.CustomerID,
		OriginalAmount:           calc.OriginalAmount,
		EligibleAmount:           calc.EligibleAmount,
		Currency:                 booking.Currency,
		RefundPercentage:         calc.RefundPercentage,
		DaysBeforeCheckin:        calc.DaysBeforeCheckIn,
		PolicyApplied:            calc.PolicyApplied,
		PaymentMethod:            booking.PaymentMethod,
		OriginalPaymentReference: booking.PaymentReference,
		Status:                   entity.RefundStatusRequested,
		RequestedAt:              now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.RefundRepository().Create(ctx, refund); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.AlreadyExists("a refund already exists for booking %s", bookingId)
		}
		return nil, err
	}

	entry := &entity.RefundStatusHistory{
		ID:        uuid.New(),
		TenantID:  tenantId,
		RefundID:  refund.ID,
		NewStatus: entity.RefundStatusRequested,
		Notes:     fmt.Sprintf("Refund requested: %s (%.0f%%)", calc.PolicyApplied.Label, calc.RefundPercentage),
	}
	if err := uow.RefundHistoryRepository().Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := uow.BookingRepository().UpdateRefundStatus(ctx, booking, entity.RefundStatusRequested); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("REFUND", "Refund created from cancellation", map[string]interface{}{
		"refundId":       refund.ID.String(),
		"bookingId":      booking.ID.String(),
		"tenantId":       tenantId.String(),
		"eligibleAmount": refund.EligibleAmount,
		"policyApplied":  calc.PolicyApplied.Label,
	})
	s.publisher.PublishRefundRequested(ctx, refund)

	return refund, nil
}

func (s *refundService) MarkUnderReview(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.ReviewRefundRequest) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusUnderReview, actor, func(r *entity.Refund) (string, error) {
		now := time.Now()
		r.ReviewedAt = &now
		r.ReviewedBy = &actor.Id
		if req.StaffNotes != "" {
			r.StaffNotes = req.StaffNotes
		}
		return "Marked under review", nil
	})
}

func (s *refundService) Approve(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.ApproveRefundRequest) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusApproved, actor, func(r *entity.Refund) (string, error) {
		if req.Amount < 0 || req.Amount > r.OriginalAmount {
			return "", apperrors.Validation("approved amount %.2f must be between 0 and the original amount %.2f", req.Amount, r.OriginalAmount)
		}
		override := req.Amount != r.EligibleAmount
		if override && req.OverrideReason == "" {
			return "", apperrors.Validation("an override reason is required when the approved amount %.2f differs from the eligible amount %.2f", req.Amount, r.EligibleAmount)
		}

		now := time.Now()
		amount := req.Amount
		r.ApprovedAmount = &amount
		r.ApprovedAt = &now
		r.ApprovedBy = &actor.Id
		if req.StaffNotes != "" {
			r.StaffNotes = req.StaffNotes
		}

		notes := fmt.Sprintf("Approved %.2f %s", amount, r.Currency)
		if override {
			r.OverrideReason = req.OverrideReason
			notes = fmt.Sprintf("%s (override of eligible %.2f: %s)", notes, r.EligibleAmount, req.OverrideReason)
		}
		return notes, nil
	})
}

func (s *refundService) Reject(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.RejectRefundRequest) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusRejected, actor, func(r *entity.Refund) (string, error) {
		if req.Reason == "" {
			return "", apperrors.Validation("a rejection reason is required")
		}

		now := time.Now()
		r.RejectionReason = req.Reason
		r.RejectedAt = &now
		r.RejectedBy = &actor.Id
		if req.StaffNotes != "" {
			r.StaffNotes = req.StaffNotes
		}
		return "Rejected: " + req.Reason, nil
	})
}

func (s *refundService) MarkProcessing(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusProcessing, actor, func(r *entity.Refund) (string, error) {
		now := time.Now()
		r.ProcessedAt = &now
		r.ProcessedBy = &actor.Id
		return "Processing started", nil
	})
}

func (s *refundService) Complete(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.CompleteRefundRequest) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusCompleted, actor, func(r *entity.Refund) (string, error) {
		if req.Amount < 0 || req.Amount > r.OriginalAmount {
			return "", apperrors.Validation("processed amount %.2f must be between 0 and the original amount %.2f", req.Amount, r.OriginalAmount)
		}

		now := time.Now()
		amount := req.Amount
		r.ProcessedAmount = &amount
		r.RefundReference = req.RefundReference
		r.CompletedAt = &now

		notes := fmt.Sprintf("Completed: %.2f %s refunded", amount, r.Currency)
		if req.RefundReference != "" {
			notes = fmt.Sprintf("%s (ref %s)", notes, req.RefundReference)
		}
		return notes, nil
	})
}

func (s *refundService) Fail(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, req *dto.FailRefundRequest) (*entity.Refund, error) {
	return s.transition(ctx, tenantId, refundId, entity.RefundStatusFailed, actor, func(r *entity.Refund) (string, error) {
		if req.Reason == "" {
			return "", apperrors.Validation("a failure reason is required")
		}

		now := time.Now()
		r.FailureReason = req.Reason
		r.FailedAt = &now
		return "Failed: " + req.Reason, nil
	})
}

// transition runs one guarded state change as a unit: load, validate the
// transition table, apply the mutation, then write the refund row (status
// CAS), the history entry and the booking mirror in one transaction. The
// mutate callback returns the history note and may veto with a validation
// error before anything is written.
func (s *refundService) transition(ctx context.Context, tenantId, refundId uuid.UUID, target entity.RefundStatus, actor dto.Actor, mutate func(*entity.Refund) (string, error)) (*entity.Refund, error) {
	lock := s.lockFor(refundId)
	lock.Lock()
	defer lock.Unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	refund, err := uow.RefundRepository().FindOne(ctx,
		specification.ByID{ID: refundId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NotFound("refund %s not found", refundId)
	}

	sources := entity.TransitionSources(target)
	if !entity.CanTransition(refund.Status, target) {
		return nil, apperrors.InvalidTransition(
			"cannot move refund to %s: requires status %s, currently %s",
			target, statusList(sources), refund.Status,
		)
	}

	previous := refund.Status
	notes, err := mutate(refund)
	if err != nil {
		return nil, err
	}
	refund.Status = target

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	ok, err := uow.RefundRepository().UpdateTransition(ctx, refund, sources)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another transition won between our read and this write.
		return nil, apperrors.InvalidTransition(
			"cannot move refund to %s: requires status %s, but the refund changed concurrently",
			target, statusList(sources),
		)
	}

	entry := &entity.RefundStatusHistory{
		ID:             uuid.New(),
		TenantID:       tenantId,
		RefundID:       refund.ID,
		PreviousStatus: &previous,
		NewStatus:      target,
		ChangedBy:      &actor.Id,
		ChangedByName:  actor.Name,
		Notes:          notes,
	}
	if err := uow.RefundHistoryRepository().Append(ctx, entry); err != nil {
		return nil, err
	}

	booking := &entity.Booking{ID: refund.BookingID, TenantID: refund.TenantID}
	if err := uow.BookingRepository().UpdateRefundStatus(ctx, booking, target); err != nil {
		return nil, err
	}
	if target == entity.RefundStatusCompleted {
		if err := uow.BookingRepository().UpdatePaymentStatus(ctx, booking, entity.BookingPaymentStatusRefunded); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("REFUND", "Refund transition", map[string]interface{}{
		"refundId": refund.ID.String(),
		"tenantId": tenantId.String(),
		"from":     string(previous),
		"to":       string(target),
		"actor":    actor.Name,
	})
	s.publisher.PublishRefundStatusChanged(ctx, refund, previous, actor.Name)

	return refund, nil
}

// ProcessGatewayRefund settles an approved refund through the payment
// gateway. The refund is moved to processing before the external call so a
// crash mid-settlement leaves a durable, resumable state. The gateway is
// called outside the per-refund lock and is never retried here: a failure is
// terminal and escalates to a human.
func (s *refundService) ProcessGatewayRefund(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor) (*entity.Refund, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	refund, err := uow.RefundRepository().FindOne(ctx,
		specification.ByID{ID: refundId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NotFound("refund %s not found", refundId)
	}
	if refund.Status != entity.RefundStatusApproved {
		return nil, apperrors.InvalidTransition(
			"cannot settle refund: requires status %s, currently %s",
			entity.RefundStatusApproved, refund.Status,
		)
	}
	if !refund.GatewayEligible() {
		return nil, apperrors.Validation(
			"refund %s cannot be settled through the gateway: payment method %q or missing original payment reference",
			refundId, refund.PaymentMethod,
		)
	}

	cfg, err := s.tenantConfigs.FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.GatewaySecretKey() == "" {
		return nil, apperrors.Validation("gateway credentials are not configured for tenant %s", tenantId)
	}

	payout := refund.PayoutAmount()

	refund, err = s.MarkProcessing(ctx, tenantId, refundId, actor)
	if err != nil {
		return nil, err
	}

	resp, err := s.gatewayClient.Refund(ctx, cfg.GatewaySecretKey(), &gateway.RefundRequest{
		Transaction: refund.OriginalPaymentReference,
		Amount:      gateway.MinorUnits(payout),
		Currency:    refund.Currency,
		Notes:       fmt.Sprintf("Refund %s for booking %s", refund.ID, refund.BookingID),
	})
	if err != nil {
		return s.settleFailed(ctx, tenantId, refundId, actor, fmt.Sprintf("Gateway request failed: %v", err), err)
	}
	if !resp.Status {
		reason := resp.Message
		if reason == "" {
			reason = "gateway declined the refund"
		}
		return s.settleFailed(ctx, tenantId, refundId, actor, "Gateway declined: "+reason, nil)
	}

	reference := ""
	if resp.Data != nil {
		reference = resp.Data.ID
	}

	return s.Complete(ctx, tenantId, refundId, actor, &dto.CompleteRefundRequest{
		Amount:          payout,
		RefundReference: reference,
	})
}

func (s *refundService) settleFailed(ctx context.Context, tenantId, refundId uuid.UUID, actor dto.Actor, reason string, cause error) (*entity.Refund, error) {
	refund, failErr := s.Fail(ctx, tenantId, refundId, actor, &dto.FailRefundRequest{Reason: reason})
	if failErr != nil {
		// The refund stays in processing for manual reconciliation.
		s.logger.Error("REFUND", "Failed to record gateway failure", map[string]interface{}{
			"refundId": refundId.String(),
			"reason":   reason,
			"error":    failErr.Error(),
		})
		return nil, apperrors.Gateway(cause, "%s (and recording the failure also failed: %v)", reason, failErr)
	}
	return refund, apperrors.Gateway(cause, "%s", reason)
}

func (s *refundService) GetRefunds(ctx context.Context, tenantId uuid.UUID, filter *dto.RefundListFilter) ([]*entity.Refund, error) {
	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: tenantId},
	}
	if filter.Status != "" {
		if !entity.IsValidRefundStatus(filter.Status) {
			return nil, apperrors.Validation("unknown refund status %q", filter.Status)
		}
		specs = append(specs, specification.StatusIs{Status: entity.RefundStatus(filter.Status)})
	}
	if filter.BookingId != nil {
		specs = append(specs, specification.ByBooking{BookingID: *filter.BookingId})
	}
	if filter.From != nil || filter.To != nil {
		from := time.Time{}
		if filter.From != nil {
			from = *filter.From
		}
		to := time.Now()
		if filter.To != nil {
			to = *filter.To
		}
		specs = append(specs, specification.RequestedBetween{From: from, To: to})
	}
	specs = append(specs,
		specification.OrderBy{Field: "requested_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.RefundRepository().FindAll(ctx, specs...)
}

func (s *refundService) GetRefundById(ctx context.Context, tenantId, refundId uuid.UUID) (*entity.Refund, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refund, err := uow.RefundRepository().FindOne(ctx,
		specification.ByID{ID: refundId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NotFound("refund %s not found", refundId)
	}
	return refund, nil
}

func (s *refundService) GetStatusHistory(ctx context.Context, tenantId, refundId uuid.UUID) ([]*entity.RefundStatusHistory, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	refund, err := uow.RefundRepository().FindOne(ctx,
		specification.ByID{ID: refundId},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperrors.NotFound("refund %s not found", refundId)
	}

	return uow.RefundHistoryRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.ForRefund{RefundID: refundId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}

// GetStats aggregates the tenant's refunds. The fallback rules are exact
// dashboard requirements: requested totals exclude rejected refunds,
// approved totals fall back to the eligible amount when no explicit approved
// amount was recorded, processed totals only count completed refunds.
func (s *refundService) GetStats(ctx context.Context, tenantId uuid.UUID) (*dto.RefundStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	refunds, err := uow.RefundRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}

	stats := &dto.RefundStatsResponse{
		CountsByStatus: make(map[string]int),
	}
	for _, status := range entity.ValidRefundStatuses() {
		stats.CountsByStatus[string(status)] = 0
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, r := range refunds {
		stats.CountsByStatus[string(r.Status)]++

		if r.Status != entity.RefundStatusRejected {
			stats.TotalRequestedAmount += r.EligibleAmount
		}

		switch r.Status {
		case entity.RefundStatusApproved, entity.RefundStatusProcessing, entity.RefundStatusCompleted:
			stats.TotalApprovedAmount += r.PayoutAmount()
		}

		if r.Status == entity.RefundStatusCompleted && r.ProcessedAmount != nil {
			stats.TotalProcessedAmount += *r.ProcessedAmount
			if r.CompletedAt != nil && !r.CompletedAt.Before(monthStart) {
				stats.CompletedThisMonth += *r.ProcessedAmount
			}
		}
	}

	stats.TotalRequestedAmount = policy.RoundAmount(stats.TotalRequestedAmount)
	stats.TotalApprovedAmount = policy.RoundAmount(stats.TotalApprovedAmount)
	stats.TotalProcessedAmount = policy.RoundAmount(stats.TotalProcessedAmount)
	stats.CompletedThisMonth = policy.RoundAmount(stats.CompletedThisMonth)

	return stats, nil
}

// GetPendingEscalation lists refunds sitting in requested or approved longer
// than the threshold. Read-only: it drives human follow-up, not transitions.
func (s *refundService) GetPendingEscalation(ctx context.Context, tenantId uuid.UUID, hoursThreshold int) ([]*entity.Refund, error) {
	if hoursThreshold < 1 {
		hoursThreshold = 24
	}
	cutoff := time.Now().Add(-time.Duration(hoursThreshold) * time.Hour)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.RefundRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.StatusIn{Statuses: []entity.RefundStatus{
			entity.RefundStatusRequested,
			entity.RefundStatusApproved,
		}},
		specification.RequestedBefore{Cutoff: cutoff},
		specification.OrderBy{Field: "requested_at", Desc: false},
	)
}

func statusList(statuses []entity.RefundStatus) string {
	out := ""
	for i, s := range statuses {
		if i > 0 {
			out += " or "
		}
		out += string(s)
	}
	return out
}
