package http

import (
	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/infrastructure/repository"
	"github.com/gymdesk/gymdesk/internal/shared/db"
)

type repositories struct {
	member    *repository.MemberRepository
	payment   *repository.PaymentRepository
	plan      *repository.PlanRepository
	txManager *db.TransactionManager
}

func newRepositories(gdb *gorm.DB) *repositories {
	return &repositories{
		member:    repository.NewMemberRepository(gdb),
		payment:   repository.NewPaymentRepository(gdb),
		plan:      repository.NewPlanRepository(gdb),
		txManager: db.NewTransactionManager(gdb),
	}
}
