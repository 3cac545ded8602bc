package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/gymdesk/internal/shared/constants"
)

// PlanModel is the plans catalog table.
type PlanModel struct {
	ID        uint            `gorm:"primaryKey"`
	PlanType  string          `gorm:"uniqueIndex;size:100;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Duration  int             `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}
