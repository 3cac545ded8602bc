package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/mappers"
	"github.com/gymdesk/gymdesk/internal/infrastructure/persistence/models"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/db"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns every catalog row, including rows the resolver will skip.
func (r *PlanRepository) List(ctx context.Context) ([]*membership.Plan, error) {
	var rows []models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*membership.Plan, 0, len(rows))
	for i := range rows {
		p, err := mappers.PlanToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// GetByType returns nil, nil when no plan has the given type.
func (r *PlanRepository) GetByType(ctx context.Context, planType string) (*membership.Plan, error) {
	var model models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("LOWER(plan_type) = ?", strings.ToLower(strings.TrimSpace(planType))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by type: %w", err)
	}

	return mappers.PlanToDomain(&model)
}

// Upsert inserts p, or updates price and duration of the plan sharing its
// type.
func (r *PlanRepository) Upsert(ctx context.Context, p *membership.Plan) error {
	existing, err := r.GetByType(ctx, p.PlanType())
	if err != nil {
		return err
	}

	if existing == nil {
		model := mappers.PlanToModel(p)
		if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		p.SetID(model.ID)
		return nil
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("id = ?", existing.ID()).
		Updates(map[string]interface{}{
			"amount":     p.Amount(),
			"duration":   p.Duration(),
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	p.SetID(existing.ID())
	return nil
}
