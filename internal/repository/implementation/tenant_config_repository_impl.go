package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/model"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/Wollie333/vilo-sub013/pkg/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantConfigRepositoryImpl struct {
	db *gorm.DB
}

func NewTenantConfigRepository(db *gorm.DB) contract.TenantConfigRepository {
	return &tenantConfigRepositoryImpl{db: db}
}

func (r *tenantConfigRepositoryImpl) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.TenantConfig, error) {
	var modelConfig model.TenantConfig
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		First(&modelConfig).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	// Decode and validate the tier list once here; a malformed policy is a
	// configuration defect surfaced immediately, not a silent zero-tier.
	var tiers []policy.CancellationPolicyTier
	if len(modelConfig.CancellationPolicy) > 0 {
		if err := json.Unmarshal(modelConfig.CancellationPolicy, &tiers); err != nil {
			return nil, fmt.Errorf("malformed cancellation policy for tenant %s: %w", tenantId, err)
		}
	}
	for _, tier := range tiers {
		if tier.RefundPercentage < 0 || tier.RefundPercentage > 100 {
			return nil, fmt.Errorf("cancellation policy tier %q for tenant %s has refund percentage %v outside 0..100",
				tier.Label, tenantId, tier.RefundPercentage)
		}
	}

	return &entity.TenantConfig{
		TenantID:             modelConfig.TenantID,
		CancellationPolicy:   tiers,
		GatewayTestSecretKey: modelConfig.GatewayTestSecretKey,
		GatewayLiveSecretKey: modelConfig.GatewayLiveSecretKey,
		GatewayLiveMode:      modelConfig.GatewayLiveMode,
		UpdatedAt:            modelConfig.UpdatedAt,
	}, nil
}
