package model

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID       *uuid.UUID `gorm:"type:uuid"`
	TotalAmount      float64    `gorm:"type:decimal(12,2);not null"`
	Currency         string     `gorm:"type:varchar(3);not null;default:'USD'"`
	CheckIn          time.Time  `gorm:"not null"`
	CheckOut         time.Time  `gorm:"not null"`
	PaymentMethod    string     `gorm:"type:varchar(50)"`
	PaymentReference string     `gorm:"type:varchar(255)"`
	PaymentStatus    string     `gorm:"type:varchar(50);default:'pending'"`
	RefundStatus     *string    `gorm:"type:varchar(50)"`
	CancelledAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
