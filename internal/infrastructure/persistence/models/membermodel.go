package models

import (
	"time"

	"github.com/gymdesk/gymdesk/internal/shared/constants"
)

// MemberModel is the members table.
type MemberModel struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex;size:255;not null"`
	Name          string `gorm:"size:255"`
	AccountStatus string `gorm:"size:20;not null;default:'active';index"`
	BillingStatus string `gorm:"column:payment_status;size:20;not null;default:'unpaid';index"`
	PlanType      string `gorm:"size:100"`
	EndDate       *time.Time
	Version       int `gorm:"default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MemberModel) TableName() string {
	return constants.TableMembers
}
