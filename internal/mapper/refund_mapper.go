package mapper

import (
	"github.com/Wollie333/vilo-sub013/internal/dto"
	"github.com/Wollie333/vilo-sub013/internal/entity"
)

type RefundMapper struct{}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{}
}

func (m *RefundMapper) ToResponse(r *entity.Refund) *dto.RefundResponse {
	if r == nil {
		return nil
	}
	return &dto.RefundResponse{
		Id:                r.ID,
		BookingId:         r.BookingID,
		CustomerId:        r.CustomerID,
		Status:            string(r.Status),
		OriginalAmount:    r.OriginalAmount,
		EligibleAmount:    r.EligibleAmount,
		ApprovedAmount:    r.ApprovedAmount,
		ProcessedAmount:   r.ProcessedAmount,
		Currency:          r.Currency,
		RefundPercentage:  r.RefundPercentage,
		DaysBeforeCheckin: r.DaysBeforeCheckin,
		PolicyApplied:     r.PolicyApplied,
		PaymentMethod:     r.PaymentMethod,
		RefundReference:   r.RefundReference,
		RejectionReason:   r.RejectionReason,
		StaffNotes:        r.StaffNotes,
		OverrideReason:    r.OverrideReason,
		FailureReason:     r.FailureReason,
		RequestedAt:       r.RequestedAt,
		ReviewedAt:        r.ReviewedAt,
		ApprovedAt:        r.ApprovedAt,
		RejectedAt:        r.RejectedAt,
		ProcessedAt:       r.ProcessedAt,
		CompletedAt:       r.CompletedAt,
		FailedAt:          r.FailedAt,
	}
}

func (m *RefundMapper) ToResponseList(refunds []*entity.Refund) []*dto.RefundResponse {
	out := make([]*dto.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, m.ToResponse(r))
	}
	return out
}

func (m *RefundMapper) ToHistoryResponse(h *entity.RefundStatusHistory) *dto.RefundHistoryResponse {
	if h == nil {
		return nil
	}
	var previous *string
	if h.PreviousStatus != nil {
		s := string(*h.PreviousStatus)
		previous = &s
	}
	return &dto.RefundHistoryResponse{
		Id:             h.ID,
		RefundId:       h.RefundID,
		PreviousStatus: previous,
		NewStatus:      string(h.NewStatus),
		ChangedBy:      h.ChangedBy,
		ChangedByName:  h.ChangedByName,
		Notes:          h.Notes,
		CreatedAt:      h.CreatedAt,
	}
}

func (m *RefundMapper) ToHistoryResponseList(entries []*entity.RefundStatusHistory) []*dto.RefundHistoryResponse {
	out := make([]*dto.RefundHistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, m.ToHistoryResponse(h))
	}
	return out
}
