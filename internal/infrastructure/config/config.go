package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	sharedConfig "github.com/gymdesk/gymdesk/internal/shared/config"
)

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Email      sharedConfig.EmailConfig      `mapstructure:"email"`
	Membership sharedConfig.MembershipConfig `mapstructure:"membership"`
	Gateway    sharedConfig.GatewayConfig    `mapstructure:"gateway"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configPath when set), overlays GYMDESK_*
// environment variables and applies defaults. A missing config file is not
// an error; defaults and environment are enough to run.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("GYMDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the last loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timezone", "Asia/Kolkata")
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.admin_rate_limit", 10)

	// Database
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "gymdesk")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis (empty host disables it)
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Email
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@gymdesk.local")
	v.SetDefault("email.from_name", "Gymdesk")
	v.SetDefault("email.renew_url", "http://localhost:3000/renew")
	v.SetDefault("email.templates_dir", "")

	// Membership lifecycle
	v.SetDefault("membership.notice_thresholds", []int{10, 5, 1})
	v.SetDefault("membership.expiration_cron", "0 6 * * *")
	v.SetDefault("membership.notify_interval", time.Second)
	v.SetDefault("membership.notice_ttl", 72*time.Hour)
	v.SetDefault("membership.total_tolerance", "5")
	v.SetDefault("membership.nearest_max_diff", "20")
	v.SetDefault("membership.nearest_max_ratio", "0.05")

	// Payment gateway
	v.SetDefault("gateway.base_url", "https://api.cashfree.com/pg")
	v.SetDefault("gateway.client_id", "")
	v.SetDefault("gateway.client_secret", "")
	v.SetDefault("gateway.api_version", "2023-08-01")
	v.SetDefault("gateway.timeout", 10*time.Second)
	v.SetDefault("gateway.sync_interval", 15*time.Minute)
	v.SetDefault("gateway.sync_lookback", 72*time.Hour)
}
