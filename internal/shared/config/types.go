package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the HTTP surface. AdminRateLimit is the per-IP
// budget per minute for admin routes and only applies with Redis.
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Mode           string `mapstructure:"mode"`
	Timezone       string `mapstructure:"timezone"`
	AdminToken     string `mapstructure:"admin_token"`
	AdminRateLimit int    `mapstructure:"admin_rate_limit"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis host is configured. Without Redis the
// notice ledger falls back to process memory and no cross-instance lock is taken.
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	RenewURL     string `mapstructure:"renew_url"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

type MembershipConfig struct {
	// NoticeThresholds are the days-remaining values that trigger a reminder.
	NoticeThresholds []int         `mapstructure:"notice_thresholds"`
	ExpirationCron   string        `mapstructure:"expiration_cron"`
	NotifyInterval   time.Duration `mapstructure:"notify_interval"`
	NoticeTTL        time.Duration `mapstructure:"notice_ttl"`
	TotalTolerance   string        `mapstructure:"total_tolerance"`
	NearestMaxDiff   string        `mapstructure:"nearest_max_diff"`
	NearestMaxRatio  string        `mapstructure:"nearest_max_ratio"`
}

type GatewayConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	APIVersion   string        `mapstructure:"api_version"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
	SyncLookback time.Duration `mapstructure:"sync_lookback"`
}

// Enabled reports whether gateway credentials are present.
func (g *GatewayConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}
