package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/model"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
	"github.com/Wollie333/vilo-sub013/pkg/policy"
	"gorm.io/gorm"
)

type refundRepositoryImpl struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &refundRepositoryImpl{db: db}
}

func (r *refundRepositoryImpl) Create(ctx context.Context, refund *entity.Refund) error {
	modelRefund, err := r.mapToModel(refund)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(modelRefund).Error
}

func (r *refundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Refund, error) {
	var modelRefund model.Refund
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&modelRefund).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&modelRefund)
}

func (r *refundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Refund, error) {
	var modelRefunds []*model.Refund
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&modelRefunds).Error; err != nil {
		return nil, err
	}

	var refunds []*entity.Refund
	for _, mr := range modelRefunds {
		refund, err := r.mapToEntity(mr)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, refund)
	}

	return refunds, nil
}

// UpdateTransition writes all mutable lifecycle fields guarded by the row's
// current status. Two racing transitions both read the same prior status, but
// only the first UPDATE matches the WHERE clause; the loser sees zero rows
// affected and backs off.
func (r *refundRepositoryImpl) UpdateTransition(ctx context.Context, refund *entity.Refund, expectedFrom []entity.RefundStatus) (bool, error) {
	from := make([]string, len(expectedFrom))
	for i, s := range expectedFrom {
		from[i] = string(s)
	}

	res := r.db.WithContext(ctx).Model(&model.Refund{}).
		Where("id = ? AND tenant_id = ? AND status IN ?", refund.ID, refund.TenantID, from).
		Updates(map[string]interface{}{
			"status":           string(refund.Status),
			"approved_amount":  refund.ApprovedAmount,
			"processed_amount": refund.ProcessedAmount,
			"refund_reference": refund.RefundReference,
			"rejection_reason": refund.RejectionReason,
			"staff_notes":      refund.StaffNotes,
			"override_reason":  refund.OverrideReason,
			"failure_reason":   refund.FailureReason,
			"reviewed_at":      refund.ReviewedAt,
			"reviewed_by":      refund.ReviewedBy,
			"approved_at":      refund.ApprovedAt,
			"approved_by":      refund.ApprovedBy,
			"rejected_at":      refund.RejectedAt,
			"rejected_by":      refund.RejectedBy,
			"processed_at":     refund.ProcessedAt,
			"processed_by":     refund.ProcessedBy,
			"completed_at":     refund.CompletedAt,
			"failed_at":        refund.FailedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *refundRepositoryImpl) mapToModel(refund *entity.Refund) (*model.Refund, error) {
	snapshot, err := json.Marshal(refund.PolicyApplied)
	if err != nil {
		return nil, fmt.Errorf("failed to encode policy snapshot: %w", err)
	}

	return &model.Refund{
		ID:                       refund.ID,
		TenantID:                 refund.TenantID,
		BookingID:                refund.BookingID,
		CustomerID:               refund.CustomerID,
		OriginalAmount:           refund.OriginalAmount,
		EligibleAmount:           refund.EligibleAmount,
		Currency:                 refund.Currency,
		RefundPercentage:         refund.RefundPercentage,
		DaysBeforeCheckin:        refund.DaysBeforeCheckin,
		PolicyApplied:            snapshot,
		PaymentMethod:            refund.PaymentMethod,
		OriginalPaymentReference: refund.OriginalPaymentReference,
		Status:                   string(refund.Status),
		ApprovedAmount:           refund.ApprovedAmount,
		ProcessedAmount:          refund.ProcessedAmount,
		RefundReference:          refund.RefundReference,
		RejectionReason:          refund.RejectionReason,
		StaffNotes:               refund.StaffNotes,
		OverrideReason:           refund.OverrideReason,
		FailureReason:            refund.FailureReason,
		RequestedAt:              refund.RequestedAt,
		ReviewedAt:               refund.ReviewedAt,
		ReviewedBy:               refund.ReviewedBy,
		ApprovedAt:               refund.ApprovedAt,
		ApprovedBy:               refund.ApprovedBy,
		RejectedAt:               refund.RejectedAt,
		RejectedBy:               refund.RejectedBy,
		ProcessedAt:              refund.ProcessedAt,
		ProcessedBy:              refund.ProcessedBy,
		CompletedAt:              refund.CompletedAt,
		FailedAt:                 refund.FailedAt,
	}, nil
}

// mapToEntity normalizes a row into a fully-populated domain object. The
// policy snapshot is decoded here once; business logic never touches raw
// JSON.
func (r *refundRepositoryImpl) mapToEntity(mr *model.Refund) (*entity.Refund, error) {
	var snapshot policy.CancellationPolicyTier
	if len(mr.PolicyApplied) > 0 {
		if err := json.Unmarshal(mr.PolicyApplied, &snapshot); err != nil {
			return nil, fmt.Errorf("malformed policy snapshot on refund %s: %w", mr.ID, err)
		}
	}

	return &entity.Refund{
		ID:                       mr.ID,
		TenantID:                 mr.TenantID,
		BookingID:                mr.BookingID,
		CustomerID:               mr.CustomerID,
		OriginalAmount:           mr.OriginalAmount,
		EligibleAmount:           mr.EligibleAmount,
		Currency:                 mr.Currency,
		RefundPercentage:         mr.RefundPercentage,
		DaysBeforeCheckin:        mr.DaysBeforeCheckin,
		PolicyApplied:            snapshot,
		PaymentMethod:            mr.PaymentMethod,
		OriginalPaymentReference: mr.OriginalPaymentReference,
		Status:                   entity.RefundStatus(mr.Status),
		ApprovedAmount:           mr.ApprovedAmount,
		ProcessedAmount:          mr.ProcessedAmount,
		RefundReference:          mr.RefundReference,
		RejectionReason:          mr.RejectionReason,
		StaffNotes:               mr.StaffNotes,
		OverrideReason:           mr.OverrideReason,
		FailureReason:            mr.FailureReason,
		RequestedAt:              mr.RequestedAt,
		ReviewedAt:               mr.ReviewedAt,
		ReviewedBy:               mr.ReviewedBy,
		ApprovedAt:               mr.ApprovedAt,
		ApprovedBy:               mr.ApprovedBy,
		RejectedAt:               mr.RejectedAt,
		RejectedBy:               mr.RejectedBy,
		ProcessedAt:              mr.ProcessedAt,
		ProcessedBy:              mr.ProcessedBy,
		CompletedAt:              mr.CompletedAt,
		FailedAt:                 mr.FailedAt,
		CreatedAt:                mr.CreatedAt,
		UpdatedAt:                mr.UpdatedAt,
	}, nil
}
