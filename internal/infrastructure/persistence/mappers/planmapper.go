package mappers

import (
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
)

func PlanToModel(p *membership.Plan) *models.PlanModel {
	return &models.PlanModel{
		ID:        p.ID(),
		PlanType:  p.PlanType(),
		Amount:    p.Amount(),
		Duration:  p.Duration(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func PlanToDomain(model *models.PlanModel) (*membership.Plan, error) {
	return membership.ReconstructPlan(
		model.ID,
		model.PlanType,
		model.Amount,
		model.Duration,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
