package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Schedule     ScheduleConfig
	SLA          SLAConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines service-token parameters. API clients exchange a
// pre-shared key (stored bcrypt-hashed) for a short-lived JWT.
type AuthConfig struct {
	JWTSecret            string
	APIKeyHash           string
	ServiceTokenTTLHours int
}

// ScheduleConfig defines the business week used for SLA clocks.
type ScheduleConfig struct {
	Timezone     string
	WeekdayStart string // HH:MM, Mon-Fri window start
	WeekdayEnd   string // HH:MM, Mon-Fri window end
	Holidays     []string
}

// SLAConfig tunes the compliance and violation engines.
type SLAConfig struct {
	GroupCacheTTLMinutes        int
	DashboardCacheTTLSec        int
	RecentBreachLimit           int
	HighComplianceThreshold     float64
	CriticalComplianceThreshold float64
	PenaltyAlertThreshold       float64
	ContractMonthlyValue        float64
}

// GroupCacheTTL returns the support-group cache time-to-live.
func (s SLAConfig) GroupCacheTTL() time.Duration {
	if s.GroupCacheTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.GroupCacheTTLMinutes) * time.Minute
}

// DashboardCacheTTL returns the redis dashboard-payload TTL.
func (s SLAConfig) DashboardCacheTTL() time.Duration {
	if s.DashboardCacheTTLSec <= 0 {
		return time.Minute
	}
	return time.Duration(s.DashboardCacheTTLSec) * time.Second
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-compliance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("AUTH_JWT_SECRET", "dev-secret"),
			APIKeyHash:           os.Getenv("AUTH_API_KEY_HASH"),
			ServiceTokenTTLHours: getEnvAsInt("AUTH_SERVICE_TOKEN_TTL_HOURS", 12),
		},
		Schedule: ScheduleConfig{
			Timezone:     getEnv("SCHEDULE_TIMEZONE", "UTC"),
			WeekdayStart: getEnv("SCHEDULE_WEEKDAY_START", "08:00"),
			WeekdayEnd:   getEnv("SCHEDULE_WEEKDAY_END", "17:00"),
			Holidays:     getEnvAsList("SCHEDULE_HOLIDAYS"),
		},
		SLA: SLAConfig{
			GroupCacheTTLMinutes:        getEnvAsInt("SLA_GROUP_CACHE_TTL_MINUTES", 10),
			DashboardCacheTTLSec:        getEnvAsInt("SLA_DASHBOARD_CACHE_TTL_SECONDS", 60),
			RecentBreachLimit:           getEnvAsInt("SLA_RECENT_BREACH_LIMIT", 25),
			HighComplianceThreshold:     getEnvAsFloat("SLA_HIGH_COMPLIANCE_THRESHOLD", 80),
			CriticalComplianceThreshold: getEnvAsFloat("SLA_CRITICAL_COMPLIANCE_THRESHOLD", 60),
			PenaltyAlertThreshold:       getEnvAsFloat("SLA_PENALTY_ALERT_THRESHOLD", 2.0),
			ContractMonthlyValue:        getEnvAsFloat("SLA_CONTRACT_MONTHLY_VALUE", 0),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
