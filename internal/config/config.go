package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"
)

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// StoreConfig selects and configures the record store
type StoreConfig struct {
	Backend       string        `yaml:"backend" env:"VH_BACKEND" env-default:"postgres" validate:"oneof=postgres mongo"`
	PostgresDSN   string        `yaml:"postgresDSN" env:"VH_POSTGRES_DSN" validate:"required_if=Backend postgres"`
	MaxConns      int32         `yaml:"maxConns" env:"VH_POSTGRES_MAX_CONNS" env-default:"4" validate:"min=1"`
	MongoURI      string        `yaml:"mongoURI" env:"VH_MONGO_URI" validate:"required_if=Backend mongo"`
	MongoDatabase string        `yaml:"mongoDatabase" env:"VH_MONGO_DATABASE" env-default:"volunteer_hub"`
	Timeout       time.Duration `yaml:"timeout" env:"VH_STORE_TIMEOUT" env-default:"10s" validate:"gt=0"`
}

// EmailConfig controls acceptance and reminder emails.
// When disabled, notifications are only logged.
type EmailConfig struct {
	Enabled bool   `yaml:"enabled" env:"VH_EMAIL_ENABLED"`
	Sender  string `yaml:"sender" env:"VH_EMAIL_SENDER" validate:"omitempty,email"`
	// OAuthClientPath points at the Google client secrets file; searched for by env when empty
	OAuthClientPath string `yaml:"oauthClientPath" env:"VH_OAUTH_CLIENT"`
}

// SessionConfig configures signed session tokens used by --session
type SessionConfig struct {
	Secret string        `yaml:"secret" env:"VH_SESSION_SECRET" validate:"omitempty,min=32"`
	Issuer string        `yaml:"issuer" env:"VH_SESSION_ISSUER" env-default:"volunteer-hub"`
	TTL    time.Duration `yaml:"ttl" env:"VH_SESSION_TTL" env-default:"720h" validate:"gt=0"`
}

// RemindersConfig schedules goal reminders
type RemindersConfig struct {
	// RRule is applied to each goal to find its next reminder time
	RRule string `yaml:"rrule" env:"VH_REMINDER_RRULE" env-default:"FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=9;BYMINUTE=0;BYSECOND=0" validate:"required"`
	// SweepSchedule is the cron expression the watch command checks for due reminders on
	SweepSchedule string `yaml:"sweepSchedule" env:"VH_REMINDER_SWEEP" env-default:"*/15 * * * *" validate:"required"`
}

// LoggingConfig controls the log file location and levels
type LoggingConfig struct {
	Dir          string `yaml:"dir" env:"VH_LOG_DIR" env-default:"logs"`
	ConsoleLevel string `yaml:"consoleLevel" env:"VH_LOG_CONSOLE_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	FileLevel    string `yaml:"fileLevel" env:"VH_LOG_FILE_LEVEL" env-default:"debug" validate:"oneof=debug info warn error"`
}

// Config represents the application configuration
type Config struct {
	Store      StoreConfig     `yaml:"store"`
	PolicyPath string          `yaml:"policyPath" env:"VH_POLICY_PATH"`
	Email      EmailConfig     `yaml:"email"`
	Session    SessionConfig   `yaml:"session"`
	Reminders  RemindersConfig `yaml:"reminders"`
	Logging    LoggingConfig   `yaml:"logging"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads .env, then volunteer_hub_config.<env>.yaml from the current directory or the
// user's home directory. VH_* environment variables override the file. Without a file the
// configuration comes from the environment and defaults alone.
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return loadFromEnv()
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadFromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the rrule and cron syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := rrule.StrToRRule(cfg.Reminders.RRule); err != nil {
		return fmt.Errorf("invalid rrule in reminders.rrule: %w", err)
	}

	if _, err := cron.ParseStandard(cfg.Reminders.SweepSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule in reminders.sweepSchedule: %w", err)
	}

	if cfg.Email.Enabled && cfg.Email.Sender == "" {
		return fmt.Errorf("config validation failed: email.sender is required when email is enabled")
	}

	return nil
}

// findConfigFile searches for volunteer_hub_config.<env>.yaml in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "volunteer_hub_config.yaml"
	if env != "" {
		configFileName = "volunteer_hub_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
