package contract

import (
	"context"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/google/uuid"
)

type TenantConfigRepository interface {
	FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.TenantConfig, error)
}
