package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"orgaudit/internal/domain/org"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	DataEncryptionKey  string
	Environment        string
	SeedTenantName     string
	SeedClientID       string
	SeedClientSecret   string
	RunMigrations      bool
	MigrationsDir      string
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	AuditInterval      time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTL           time.Duration
	MetricsEnabled     bool
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	SMTPUseTLS         bool
	EmailFrom          string
	AuditNotifyTo      string
	PolicyFile         string
	Policy             org.Policy
}

// Load reads the environment. Analyzer policy resolves as env over policy file over defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           getEnvDuration("TOKEN_TTL", time.Hour),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:        getEnv("APP_ENV", "development"),
		SeedTenantName:     getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedClientID:       getEnv("SEED_CLIENT_ID", ""),
		SeedClientSecret:   getEnv("SEED_CLIENT_SECRET", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 5*1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AuditInterval:      getEnvDuration("AUDIT_INTERVAL", 24*time.Hour),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTL:           getEnvDuration("CACHE_TTL", 10*time.Minute),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:         getEnvBool("SMTP_USE_TLS", true),
		EmailFrom:          getEnv("EMAIL_FROM", "orgaudit@localhost"),
		AuditNotifyTo:      getEnv("AUDIT_NOTIFY_TO", ""),
		PolicyFile:         getEnv("ANALYZER_POLICY_FILE", ""),
	}

	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Policy = policy
	return cfg, nil
}

// LoadPolicy layers the ANALYZER_* variables over an optional YAML file.
func LoadPolicy(path string) (org.Policy, error) {
	policy := org.DefaultPolicy()
	if strings.TrimSpace(path) != "" {
		filePolicy, err := ReadPolicyFile(path)
		if err != nil {
			return org.Policy{}, err
		}
		policy = filePolicy
	}

	policy.MinAbovePct = getEnvFloat("ANALYZER_SALARY_MIN_PCT", policy.MinAbovePct)
	policy.MaxAbovePct = getEnvFloat("ANALYZER_SALARY_MAX_PCT", policy.MaxAbovePct)
	policy.MaxReportingDepth = getEnvInt("ANALYZER_MAX_REPORTING_DEPTH", policy.MaxReportingDepth)
	if err := policy.Validate(); err != nil {
		return org.Policy{}, err
	}
	return policy, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for salary encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedClientID) != "" && len(c.SeedClientSecret) < 16 {
			return fmt.Errorf("SEED_CLIENT_SECRET must be at least 16 characters in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.AuditInterval < 0 {
		return fmt.Errorf("AUDIT_INTERVAL cannot be negative")
	}
	return c.Policy.Validate()
}
