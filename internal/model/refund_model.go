package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Refund struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_refunds_tenant_status,priority:1;uniqueIndex:idx_refunds_tenant_booking,priority:1"`

	BookingID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_refunds_tenant_booking,priority:2"`
	CustomerID *uuid.UUID `gorm:"type:uuid"`

	OriginalAmount           float64        `gorm:"type:decimal(12,2);not null"`
	EligibleAmount           float64        `gorm:"type:decimal(12,2);not null"`
	Currency                 string         `gorm:"type:varchar(3);not null"`
	RefundPercentage         float64        `gorm:"type:decimal(5,2);not null"`
	DaysBeforeCheckin        int            `gorm:"not null"`
	PolicyApplied            datatypes.JSON `gorm:"type:jsonb"`
	PaymentMethod            string         `gorm:"type:varchar(50)"`
	OriginalPaymentReference string         `gorm:"type:varchar(255)"`

	Status          string   `gorm:"type:varchar(50);not null;default:'requested';index:idx_refunds_tenant_status,priority:2"`
	ApprovedAmount  *float64 `gorm:"type:decimal(12,2)"`
	ProcessedAmount *float64 `gorm:"type:decimal(12,2)"`
	RefundReference string   `gorm:"type:varchar(255)"`
	RejectionReason string   `gorm:"type:text"`
	StaffNotes      string   `gorm:"type:text"`
	OverrideReason  string   `gorm:"type:text"`
	FailureReason   string   `gorm:"type:text"`

	RequestedAt time.Time `gorm:"not null"`
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	RejectedAt  *time.Time
	RejectedBy  *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`
	CompletedAt *time.Time
	FailedAt    *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Relations
	Booking Booking `gorm:"foreignKey:BookingID"`
}

func (Refund) TableName() string {
	return "refunds"
}
