package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Rules    timesheet.RuleConfig
	Billing  billing.BillingConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	RulesFile      string
}

// CronConfig controls the background no-show job
type CronConfig struct {
	Enabled        bool
	NoShowInterval time.Duration
	NoShowAfter    time.Duration
}

// Load reads .env when present, then the environment, then RULES_FILE.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		Rules:   timesheet.DefaultRuleConfig(),
		Billing: billing.DefaultBillingConfig(),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "guardforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "guardforce"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RulesFile:      getEnv("RULES_FILE", ""),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Cron configuration
	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}
	noShowInterval, err := time.ParseDuration(getEnv("CRON_NO_SHOW_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_NO_SHOW_INTERVAL: %w", err)
	}
	noShowAfter, err := time.ParseDuration(getEnv("CRON_NO_SHOW_AFTER", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_NO_SHOW_AFTER: %w", err)
	}

	config.Cron = CronConfig{
		Enabled:        cronEnabled,
		NoShowInterval: noShowInterval,
		NoShowAfter:    noShowAfter,
	}

	if config.App.RulesFile != "" {
		if err := LoadRulesFile(config.App.RulesFile, &config.Rules, &config.Billing); err != nil {
			return nil, err
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// rulesFile is the YAML layout of RULES_FILE. Keys left out keep their
// current values.
type rulesFile struct {
	Rules   *timesheet.RuleConfig `yaml:"rules"`
	Billing *billingFile          `yaml:"billing"`
}

// Money figures are strings so they parse exactly.
type billingFile struct {
	DefaultHourlyRate     string `yaml:"default_hourly_rate"`
	DefaultTaxRatePercent string `yaml:"default_tax_rate_percent"`
	OvertimeMultiplier    string `yaml:"overtime_multiplier"`
	PayrollTaxPercent     string `yaml:"payroll_tax_percent"`
	PayrollNIPercent      string `yaml:"payroll_ni_percent"`
	InvoiceDueDays        *int   `yaml:"invoice_due_days"`
}

// LoadRulesFile overlays the YAML file at path onto rules and billingCfg.
func LoadRulesFile(path string, rules *timesheet.RuleConfig, billingCfg *billing.BillingConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rules file: %w", err)
	}

	file := rulesFile{Rules: rules}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if file.Billing == nil || billingCfg == nil {
		return nil
	}

	fields := []struct {
		key   string
		value string
		dst   *decimal.Decimal
	}{
		{"default_hourly_rate", file.Billing.DefaultHourlyRate, &billingCfg.DefaultHourlyRate},
		{"default_tax_rate_percent", file.Billing.DefaultTaxRatePercent, &billingCfg.DefaultTaxRatePercent},
		{"overtime_multiplier", file.Billing.OvertimeMultiplier, &billingCfg.OvertimeMultiplier},
		{"payroll_tax_percent", file.Billing.PayrollTaxPercent, &billingCfg.PayrollTaxPercent},
		{"payroll_ni_percent", file.Billing.PayrollNIPercent, &billingCfg.PayrollNIPercent},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return fmt.Errorf("invalid billing.%s %q: %w", f.key, f.value, err)
		}
		*f.dst = d
	}
	if file.Billing.InvoiceDueDays != nil {
		billingCfg.InvoiceDueDays = *file.Billing.InvoiceDueDays
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	hundred := decimal.NewFromInt(100)
	if c.Billing.DefaultHourlyRate.IsNegative() {
		return fmt.Errorf("billing.default_hourly_rate must be non-negative")
	}
	for name, pct := range map[string]decimal.Decimal{
		"default_tax_rate_percent": c.Billing.DefaultTaxRatePercent,
		"payroll_tax_percent":      c.Billing.PayrollTaxPercent,
		"payroll_ni_percent":       c.Billing.PayrollNIPercent,
	} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("billing.%s must be between 0 and 100", name)
		}
	}
	if c.Billing.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("billing.overtime_multiplier must be at least 1")
	}
	if c.Billing.InvoiceDueDays < 0 {
		return fmt.Errorf("billing.invoice_due_days must be non-negative")
	}

	if c.Cron.Enabled && (c.Cron.NoShowInterval <= 0 || c.Cron.NoShowAfter < 0) {
		return fmt.Errorf("CRON_NO_SHOW_INTERVAL must be positive and CRON_NO_SHOW_AFTER non-negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
