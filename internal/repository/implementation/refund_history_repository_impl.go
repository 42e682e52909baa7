package implementation

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/model"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/internal/repository/specification"
	"gorm.io/gorm"
)

type refundHistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewRefundHistoryRepository(db *gorm.DB) contract.RefundHistoryRepository {
	return &refundHistoryRepositoryImpl{db: db}
}

func (r *refundHistoryRepositoryImpl) Append(ctx context.Context, entry *entity.RefundStatusHistory) error {
	var prev *string
	if entry.PreviousStatus != nil {
		s := string(*entry.PreviousStatus)
		prev = &s
	}

	modelEntry := &model.RefundStatusHistory{
		ID:             entry.ID,
		TenantID:       entry.TenantID,
		RefundID:       entry.RefundID,
		PreviousStatus: prev,
		NewStatus:      string(entry.NewStatus),
		ChangedBy:      entry.ChangedBy,
		ChangedByName:  entry.ChangedByName,
		Notes:          entry.Notes,
	}
	return r.db.WithContext(ctx).Create(modelEntry).Error
}

func (r *refundHistoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundStatusHistory, error) {
	var modelEntries []*model.RefundStatusHistory
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&modelEntries).Error; err != nil {
		return nil, err
	}

	var entries []*entity.RefundStatusHistory
	for _, me := range modelEntries {
		entries = append(entries, r.mapToEntity(me))
	}

	return entries, nil
}

func (r *refundHistoryRepositoryImpl) mapToEntity(me *model.RefundStatusHistory) *entity.RefundStatusHistory {
	var prev *entity.RefundStatus
	if me.PreviousStatus != nil {
		s := entity.RefundStatus(*me.PreviousStatus)
		prev = &s
	}

	return &entity.RefundStatusHistory{
		ID:             me.ID,
		TenantID:       me.TenantID,
		RefundID:       me.RefundID,
		PreviousStatus: prev,
		NewStatus:      entity.RefundStatus(me.NewStatus),
		ChangedBy:      me.ChangedBy,
		ChangedByName:  me.ChangedByName,
		Notes:          me.Notes,
		CreatedAt:      me.CreatedAt,
	}
}
