package migration

import (
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models managed by GormAutoMigrateStrategy.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.MemberModel{},
		&models.PaymentModel{},
		&models.PlanModel{},
	}
}
