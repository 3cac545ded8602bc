package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/gymdesk/internal/shared/constants"
)

// PaymentModel is the payments table. PaymentStatus holds the raw gateway
// spelling.
type PaymentModel struct {
	ID            uint             `gorm:"primaryKey"`
	OrderID       string           `gorm:"uniqueIndex;size:64;not null"`
	MemberID      *uint            `gorm:"index"`
	OrderAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	PaymentStatus string           `gorm:"size:32;not null;index"`
	CustomerEmail string           `gorm:"size:255;not null;index"`
	PlanType      string           `gorm:"size:100"`
	PlanAmount    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PlanDuration  *int
	CompletedAt   *time.Time
	Version       int       `gorm:"default:1"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
