package mappers

import (
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	vo "github.com/gymdesk/gymdesk/internal/domain/membership/valueobjects"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
)

func MemberToModel(m *membership.Member) *models.MemberModel {
	return &models.MemberModel{
		ID:            m.ID(),
		Email:         m.Email(),
		Name:          m.Name(),
		AccountStatus: m.AccountStatus().String(),
		BillingStatus: m.BillingStatus().String(),
		PlanType:      m.PlanType(),
		EndDate:       m.EndDate(),
		Version:       m.Version(),
		CreatedAt:     m.CreatedAt(),
		UpdatedAt:     m.UpdatedAt(),
	}
}

func MemberToDomain(model *models.MemberModel) (*membership.Member, error) {
	return membership.ReconstructMember(
		model.ID,
		model.Email,
		model.Name,
		vo.AccountStatus(model.AccountStatus),
		vo.BillingStatus(model.BillingStatus),
		model.PlanType,
		model.EndDate,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func MembersToDomain(rows []models.MemberModel) ([]*membership.Member, error) {
	out := make([]*membership.Member, 0, len(rows))
	for i := range rows {
		m, err := MemberToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
