package memory

import (
	"context"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/entity"
	"github.com/Wollie333/vilo-sub013/internal/repository/contract"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TenantConfigCache decorates a TenantConfigRepository with a TTL cache.
// Tenant policy tiers and gateway keys are read on every refund creation and
// settlement but change rarely; a short TTL keeps config edits visible
// without hitting the database per request.
type TenantConfigCache struct {
	inner contract.TenantConfigRepository
	cache *cache.Cache
}

func NewTenantConfigCache(inner contract.TenantConfigRepository, ttl time.Duration) *TenantConfigCache {
	return &TenantConfigCache{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *TenantConfigCache) FindByTenant(ctx context.Context, tenantId uuid.UUID) (*entity.TenantConfig, error) {
	key := tenantId.String()
	if x, found := r.cache.Get(key); found {
		return x.(*entity.TenantConfig), nil
	}

	cfg, err := r.inner.FindByTenant(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		r.cache.Set(key, cfg, cache.DefaultExpiration)
	}
	return cfg, nil
}

// Invalidate drops a tenant's cached configuration.
func (r *TenantConfigCache) Invalidate(tenantId uuid.UUID) {
	r.cache.Delete(tenantId.String())
}
