// Package bootstrap performs the startup steps every command shares:
// configuration, logging, business timezone and database.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/gymdesk/gymdesk/internal/infrastructure/config"
	"github.com/gymdesk/gymdesk/internal/infrastructure/database"
	"github.com/gymdesk/gymdesk/internal/shared/biztime"
	"github.com/gymdesk/gymdesk/internal/shared/constants"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

// Flags are the persistent flags registered on the root command.
type Flags struct {
	Env        string
	ConfigPath string
}

// AddFlags registers --env and --config on cmd.
func AddFlags(cmd *cobra.Command, f *Flags) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Environment resolves the effective environment; ENV overrides the flag.
func (f *Flags) Environment() string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return f.Env
}

// Runtime is what a command gets after bootstrap.
type Runtime struct {
	Env    string
	Config *config.Config
	Logger logger.Interface
	DB     *gorm.DB
}

// Close releases the database connection.
func (r *Runtime) Close() {
	if err := database.Close(); err != nil {
		r.Logger.Warnw("failed to close database", "error", err)
	}
}

// Init loads configuration and initializes logging and the business
// timezone. It does not touch the database.
func Init(f *Flags) (*Runtime, error) {
	env := f.Environment()

	cfg, err := config.Load(env, f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = MapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return &Runtime{
		Env:    env,
		Config: cfg,
		Logger: logger.NewLogger(),
	}, nil
}

// InitWithDatabase runs Init and opens the database.
func InitWithDatabase(f *Flags) (*Runtime, error) {
	rt, err := Init(f)
	if err != nil {
		return nil, err
	}

	if err := database.Init(&rt.Config.Database, rt.Logger.Named("database")); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt.DB = database.Get()

	return rt, nil
}

// MapEnvToGinMode translates an environment name to a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case constants.EnvProduction, "prod", "release":
		return "release"
	case constants.EnvTest, "testing":
		return "test"
	default:
		return "debug"
	}
}
