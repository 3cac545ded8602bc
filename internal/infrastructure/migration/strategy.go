package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// Strategy brings a database schema up to date.
type Strategy interface {
	Migrate(ctx context.Context, db *gorm.DB) error
	GetName() string
}

// GormAutoMigrateStrategy lets gorm create and alter tables from the models.
// It never drops columns and is meant for development databases.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.Named("migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	models := AutoMigrateModels()
	s.logger.Infow("starting gorm automigrate", "models_count", len(models))

	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to automigrate models: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_automigrate"
}

// MigrationState is one script and whether it has been applied.
type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
type GooseStrategy struct {
	dialect goose.Dialect
	scripts fs.FS
	logger  logger.Interface
}

// NewGooseStrategy selects the script set for driver ("mysql" or "sqlite").
func NewGooseStrategy(driver string, log logger.Interface) (*GooseStrategy, error) {
	var dialect goose.Dialect
	switch driver {
	case "mysql":
		dialect = goose.DialectMySQL
	case "sqlite":
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migration scripts for driver %q", driver)
	}

	scripts, err := fs.Sub(scriptsFS, "scripts/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	return &GooseStrategy{
		dialect: dialect,
		scripts: scripts,
		logger:  log.Named("migration.goose"),
	}, nil
}

func (s *GooseStrategy) provider(db *gorm.DB) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	p, err := goose.NewProvider(s.dialect, sqlDB, s.scripts)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return p, nil
}

func (s *GooseStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}

	from, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		s.logger.Infow("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration,
		)
	}

	to, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final migration version: %w", err)
	}

	s.logger.Infow("migration completed",
		"from_version", from,
		"to_version", to,
	)
	return nil
}

// Down rolls back the most recently applied script.
func (s *GooseStrategy) Down(ctx context.Context, db *gorm.DB) error {
	p, err := s.provider(db)
	if err != nil {
		return err
	}

	result, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	s.logger.Infow("migration rolled back",
		"version", result.Source.Version,
		"path", result.Source.Path,
	)
	return nil
}

func (s *GooseStrategy) Status(ctx context.Context, db *gorm.DB) ([]MigrationState, error) {
	p, err := s.provider(db)
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}

	out := make([]MigrationState, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationState{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}
