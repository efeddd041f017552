package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service    ServiceConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Escalation EscalationConfig
	Retention  RetentionConfig
	Push       PushConfig
	SMS        SMSConfig
	Storage    StorageConfig
	Telemetry  TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
	// CronSecret authenticates the external timer platform on the job
	// endpoints. Empty disables the check.
	CronSecret string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// EscalationConfig holds the thresholds and tolerance windows for every
// escalation tier. Tolerances are sized to the external timer period that
// invokes the tier's job endpoint.
type EscalationConfig struct {
	// NudgeThreshold is the inactivity span before the member is reminded.
	NudgeThreshold time.Duration
	// NudgeRepeat is how often the reminder repeats while the member stays
	// inactive. Zero disables repeats after the first window.
	NudgeRepeat    time.Duration
	NudgeTolerance time.Duration

	// HalfCycleTolerance bounds the manager-alert window around each
	// member's alertCycle/2 mark.
	HalfCycleTolerance time.Duration
	// HalfCycleFloor is the store-level prefilter: the minimum possible
	// half cycle across all configurable cycles.
	HalfCycleFloor time.Duration

	FullCycleThreshold time.Duration
	FullCycleTolerance time.Duration

	// DefaultAlertCycle applies when a member has no configured cycle.
	DefaultAlertCycle time.Duration
	// EmergencyFloor is the store-level prefilter for the SMS tier: the
	// minimum possible full cycle.
	EmergencyFloor time.Duration

	// JobLockTTL bounds how long a job invocation may hold its overlap lock.
	JobLockTTL time.Duration
}

// RetentionConfig holds the check-in history retention policy
type RetentionConfig struct {
	StandardMonths int
	PremiumMonths  int
}

// PushConfig holds push-gateway settings
type PushConfig struct {
	URL     string
	Timeout time.Duration
}

// SMSConfig holds SMS-gateway settings
type SMSConfig struct {
	URL     string
	Secret  string
	Sender  string
	Timeout time.Duration
}

// StorageConfig holds object-storage settings for media cleanup
type StorageConfig struct {
	DeleteURL    string
	PublicPrefix string
	Timeout      time.Duration
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof   bool
	PprofPort     int
	EnableMetrics bool
	MetricsPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"), // Default to text for development
			CronSecret:  getEnv("CRON_SECRET", ""),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "careline"),
			User:        getEnv("POSTGRES_USER", "careline"),
			Password:    getEnv("POSTGRES_PASSWORD", "careline"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Escalation: EscalationConfig{
			NudgeThreshold:     getEnvDuration("NUDGE_THRESHOLD", 24*time.Hour),
			NudgeRepeat:        getEnvDuration("NUDGE_REPEAT", 24*time.Hour),
			NudgeTolerance:     getEnvDuration("NUDGE_TOLERANCE", 15*time.Minute),
			HalfCycleTolerance: getEnvDuration("HALF_CYCLE_TOLERANCE", 15*time.Minute),
			HalfCycleFloor:     getEnvDuration("HALF_CYCLE_FLOOR", 12*time.Hour),
			FullCycleThreshold: getEnvDuration("FULL_CYCLE_THRESHOLD", 24*time.Hour),
			FullCycleTolerance: getEnvDuration("FULL_CYCLE_TOLERANCE", 6*time.Minute),
			DefaultAlertCycle:  getEnvDuration("DEFAULT_ALERT_CYCLE", 48*time.Hour),
			EmergencyFloor:     getEnvDuration("EMERGENCY_FLOOR", 24*time.Hour),
			JobLockTTL:         getEnvDuration("JOB_LOCK_TTL", 4*time.Minute),
		},
		Retention: RetentionConfig{
			StandardMonths: getEnvInt("RETENTION_STANDARD_MONTHS", 3),
			PremiumMonths:  getEnvInt("RETENTION_PREMIUM_MONTHS", 12),
		},
		Push: PushConfig{
			URL:     getEnv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
			Timeout: getEnvDuration("PUSH_TIMEOUT", 10*time.Second),
		},
		SMS: SMSConfig{
			URL:     getEnv("SMS_GATEWAY_URL", ""),
			Secret:  getEnv("SMS_GATEWAY_SECRET", ""),
			Sender:  getEnv("SMS_SENDER", ""),
			Timeout: getEnvDuration("SMS_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			DeleteURL:    getEnv("STORAGE_DELETE_URL", ""),
			PublicPrefix: getEnv("STORAGE_PUBLIC_PREFIX", ""),
			Timeout:      getEnvDuration("STORAGE_TIMEOUT", 15*time.Second),
		},
		Telemetry: TelemetryConfig{
			EnablePprof:   getEnvBool("ENABLE_PPROF", true),
			PprofPort:     getEnvInt("PPROF_PORT", 6060),
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
			MetricsPort:   getEnvInt("METRICS_PORT", 9090),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	if c.Escalation.NudgeThreshold <= 0 {
		return fmt.Errorf("nudge threshold must be positive")
	}

	if c.Escalation.DefaultAlertCycle <= 0 {
		return fmt.Errorf("default alert cycle must be positive")
	}

	if c.Escalation.HalfCycleFloor > c.Escalation.DefaultAlertCycle/2 {
		return fmt.Errorf("half cycle floor exceeds half the default alert cycle")
	}

	if c.Retention.StandardMonths < 1 || c.Retention.PremiumMonths < c.Retention.StandardMonths {
		return fmt.Errorf("invalid retention policy: standard=%d premium=%d",
			c.Retention.StandardMonths, c.Retention.PremiumMonths)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
