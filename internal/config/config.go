// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrStartupConfig marks configuration problems that must stop the process.
var ErrStartupConfig = errors.New("startup configuration error")

const (
	defaultModel          = "gemini-2.5-flash"
	defaultSlotKey        = "chroma-ai-themes"
	defaultBackupSchedule = "0 3 * * *"
)

// apiKeyEnvVars are checked in order for the model credential.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY"}

type DatabaseConfig struct {
	// sqlite3 uses mattn/go-sqlite3, sqlite uses the cgo-free modernc driver.
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AIConfig struct {
	Model          string        `yaml:"model"`
	VisionModel    string        `yaml:"vision_model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	APIKey         string        `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name            string        `yaml:"name"`
		Environment     string        `yaml:"environment"`
		Port            int           `yaml:"port"`
		BaseURL         string        `yaml:"base_url"`
		StaticDir       string        `yaml:"static_dir"` // empty serves the embedded assets
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	AI AIConfig `yaml:"ai"`

	Storage struct {
		SlotKey string `yaml:"slot_key"`
	} `yaml:"storage"`

	Backup struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
		Dir      string `yaml:"dir"`
	} `yaml:"backup"`

	RateLimit struct {
		ExtractionsPerMinute int  `yaml:"extractions_per_minute"`
		TrustProxy           bool `yaml:"trust_proxy"`
	} `yaml:"rate_limit"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "Chroma"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.BaseURL = "http://localhost:8080"
	cfg.App.ShutdownTimeout = 30 * time.Second
	cfg.App.MaxUploadBytes = 10 << 20
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Filename = "data/chroma.db"
	cfg.AI.Model = defaultModel
	cfg.AI.VisionModel = defaultModel
	cfg.AI.RequestTimeout = 60 * time.Second
	cfg.Storage.SlotKey = defaultSlotKey
	cfg.Backup.Schedule = defaultBackupSchedule
	cfg.Backup.Dir = "data/backups"
	cfg.RateLimit.ExtractionsPerMinute = 20
	cfg.Features.EnableMetrics = true
	return cfg
}

// Load loads both .env and yaml configuration. A missing yaml file leaves the defaults in place.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: error loading .env file: %v", ErrStartupConfig, err)
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: error parsing config file: %v", ErrStartupConfig, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("%w: error reading config file: %v", ErrStartupConfig, err)
	}

	// Load sensitive values from environment
	cfg.AI.APIKey = apiKeyFromEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %v", ErrStartupConfig, err)
	}

	return cfg, nil
}

func apiKeyFromEnv() string {
	for _, key := range apiKeyEnvVars {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}
	if c.App.MaxUploadBytes <= 0 {
		return fmt.Errorf("app max_upload_bytes must be positive")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai model is required")
	}
	if c.AI.VisionModel == "" {
		c.AI.VisionModel = c.AI.Model
	}
	if c.AI.RequestTimeout <= 0 {
		return fmt.Errorf("ai request_timeout must be positive")
	}
	if strings.TrimSpace(c.Storage.SlotKey) == "" {
		return fmt.Errorf("storage slot_key is required")
	}
	if c.RateLimit.ExtractionsPerMinute < 0 {
		return fmt.Errorf("rate_limit extractions_per_minute must be 0 or greater")
	}

	switch c.Database.Driver {
	case "sqlite3", "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for %s", c.Database.Driver)
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Backup.Enabled {
		if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
			return fmt.Errorf("backup schedule %q is invalid: %w", c.Backup.Schedule, err)
		}
		if c.Backup.Dir == "" {
			return fmt.Errorf("backup dir is required when backups are enabled")
		}
	}

	return nil
}

// RequireAPIKey fails when no model credential was found in the environment. Commands that
// only touch saved themes skip this check.
func (c *Config) RequireAPIKey() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("%w: %s environment variable not set", ErrStartupConfig, apiKeyEnvVars[0])
	}
	return nil
}

// IsDevelopment reports whether console logging and debug output should be used.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
