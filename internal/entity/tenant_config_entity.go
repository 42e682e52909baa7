package entity

import (
	"time"

	"github.com/Wollie333/vilo-sub013/pkg/policy"
	"github.com/google/uuid"
)

// TenantConfig is the slice of tenant configuration the refund engine needs:
// the ordered cancellation-policy tiers and the gateway credentials.
type TenantConfig struct {
	TenantID             uuid.UUID
	CancellationPolicy   []policy.CancellationPolicyTier
	GatewayTestSecretKey string
	GatewayLiveSecretKey string
	GatewayLiveMode      bool
	UpdatedAt            time.Time
}

// GatewaySecretKey returns the key for the tenant's configured gateway mode.
func (c *TenantConfig) GatewaySecretKey() string {
	if c.GatewayLiveMode {
		return c.GatewayLiveSecretKey
	}
	return c.GatewayTestSecretKey
}
