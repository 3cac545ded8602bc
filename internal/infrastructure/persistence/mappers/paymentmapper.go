package mappers

import (
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *membership.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:            p.ID(),
		OrderID:       p.OrderID(),
		MemberID:      p.MemberID(),
		OrderAmount:   p.OrderAmount(),
		PaymentStatus: p.RawStatus(),
		CustomerEmail: p.CustomerEmail(),
		PlanType:      p.PlanType(),
		PlanAmount:    p.PlanAmount(),
		PlanDuration:  p.PlanDuration(),
		CompletedAt:   p.CompletedAt(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func PaymentToDomain(model *models.PaymentModel) (*membership.Payment, error) {
	return membership.ReconstructPayment(
		model.ID,
		model.OrderID,
		model.MemberID,
		model.OrderAmount,
		model.PaymentStatus,
		model.CustomerEmail,
		membership.PaymentPlanInfo{
			PlanType:     model.PlanType,
			PlanAmount:   model.PlanAmount,
			PlanDuration: model.PlanDuration,
		},
		model.CompletedAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func PaymentsToDomain(rows []models.PaymentModel) ([]*membership.Payment, error) {
	out := make([]*membership.Payment, 0, len(rows))
	for i := range rows {
		p, err := PaymentToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
