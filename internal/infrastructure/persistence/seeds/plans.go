// Package seeds loads reference data into the database.
package seeds

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
	"github.com/gymdesk/gymdesk/internal/shared/utils"
)

type planFile struct {
	Plans []planEntry `yaml:"plans" validate:"required,min=1,dive"`
}

type planEntry struct {
	PlanType string `yaml:"plan_type" validate:"required,max=100"`
	Amount   string `yaml:"amount" validate:"required,numeric"`
	Duration int    `yaml:"duration" validate:"gt=0"`
}

// LoadPlans reads a plan catalog file of the form
//
//	plans:
//	  - plan_type: basic
//	    amount: "999.00"
//	    duration: 1
func LoadPlans(path string) ([]*membership.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlans(raw)
}

func ParsePlans(raw []byte) ([]*membership.Plan, error) {
	var file planFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if err := utils.ValidateStruct(file); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(file.Plans))
	plans := make([]*membership.Plan, 0, len(file.Plans))
	for i, entry := range file.Plans {
		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("plans[%d]: invalid amount %q: %w", i, entry.Amount, err)
		}

		plan, err := membership.NewPlan(entry.PlanType, amount, entry.Duration)
		if err != nil {
			return nil, fmt.Errorf("plans[%d]: %w", i, err)
		}

		if _, dup := seen[plan.Key()]; dup {
			return nil, fmt.Errorf("plans[%d]: duplicate plan type %q", i, entry.PlanType)
		}
		seen[plan.Key()] = struct{}{}
		plans = append(plans, plan)
	}
	return plans, nil
}

// SeedPlans upserts every plan and returns how many were written.
func SeedPlans(ctx context.Context, repo membership.PlanRepository, plans []*membership.Plan, log logger.Interface) (int, error) {
	for i, p := range plans {
		if err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("failed to seed plan %q: %w", p.PlanType(), err)
		}
		log.Infow("plan seeded",
			"plan_type", p.PlanType(),
			"amount", p.Amount().StringFixed(2),
			"duration", p.Duration(),
		)
	}
	return len(plans), nil
}
