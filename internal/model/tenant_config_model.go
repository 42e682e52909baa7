package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TenantConfig struct {
	TenantID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CancellationPolicy   datatypes.JSON `gorm:"type:jsonb"`
	GatewayTestSecretKey string         `gorm:"type:varchar(255)"`
	GatewayLiveSecretKey string         `gorm:"type:varchar(255)"`
	GatewayLiveMode      bool           `gorm:"default:false"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
}

func (TenantConfig) TableName() string {
	return "tenant_configs"
}
