package model

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatusHistory struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	RefundID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PreviousStatus *string    `gorm:"type:varchar(50)"`
	NewStatus      string     `gorm:"type:varchar(50);not null"`
	ChangedBy      *uuid.UUID `gorm:"type:uuid"`
	ChangedByName  string     `gorm:"type:varchar(255)"`
	Notes          string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`

	// Relations
	Refund Refund `gorm:"foreignKey:RefundID"`
}

func (RefundStatusHistory) TableName() string {
	return "refund_status_history"
}
