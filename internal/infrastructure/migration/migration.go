package migration

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/shared/constants"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// Manager runs a migration strategy and logs the outcome.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks gorm automigrate for development and the versioned
// scripts everywhere else.
func NewManager(environment, driver string, log logger.Interface) (*Manager, error) {
	if strings.EqualFold(environment, constants.EnvDevelopment) {
		return NewManagerWithStrategy(NewGormAutoMigrateStrategy(log), log), nil
	}

	strategy, err := NewGooseStrategy(driver, log)
	if err != nil {
		return nil, err
	}
	return NewManagerWithStrategy(strategy, log), nil
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.Named("migration.manager"),
	}
}

func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(ctx, db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err,
		)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
