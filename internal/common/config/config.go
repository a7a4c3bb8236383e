// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Admission     AdmissionConfig    `mapstructure:"admission"`
	Scheduler     SchedulerConfig    `mapstructure:"scheduler"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Audit         AuditConfig        `mapstructure:"audit"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AdmissionConfig holds the decision thresholds and business-rule knobs of
// the workflow core. Thresholds are exact cutoffs on a 0-10 scale; boundary
// values resolve to the higher band.
type AdmissionConfig struct {
	ApproveThreshold      float64 `mapstructure:"approve_threshold"`
	WaitlistThreshold     float64 `mapstructure:"waitlist_threshold"`
	ReviewHoldHours       int     `mapstructure:"review_hold_hours"`
	MaxApplicationAgeDays int     `mapstructure:"max_application_age_days"`
}

// SchedulerConfig holds settings for the timer-driven batch evaluator.
type SchedulerConfig struct {
	IntervalSeconds     int `mapstructure:"interval_seconds"`
	BatchTimeoutSeconds int `mapstructure:"batch_timeout_seconds"`
	Workers             int `mapstructure:"workers"`
	BusinessHoursStart  int `mapstructure:"business_hours_start"` // local hour, inclusive
	BusinessHoursEnd    int `mapstructure:"business_hours_end"`   // local hour, exclusive
	LockTTLSeconds      int `mapstructure:"lock_ttl_seconds"`
}

// NotificationConfig holds settings for outbound email/SMS dispatch.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	TemplateRegistry string `mapstructure:"template_registry"`
	RateLimit        struct {
		PerRecipientPerHour int `mapstructure:"per_recipient_per_hour"`
	} `mapstructure:"rate_limit"`
	DispatchTimeoutSeconds int `mapstructure:"dispatch_timeout_seconds"`
}

// AuditConfig holds settings for the transition audit sink.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
