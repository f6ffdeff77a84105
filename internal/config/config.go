// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
	URL      string `yaml:"url,omitempty"` // Overridden by DATABASE_URL when set
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AdminSender     string `yaml:"admin_sender"`
	AdminAddress    string `yaml:"admin_address"`
	ClubName        string `yaml:"club_name"`
	ClubTagline     string `yaml:"club_tagline"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type ContactConfig struct {
	DefaultRegion    string `yaml:"default_region"`
	CooldownSeconds  int    `yaml:"cooldown_seconds"`
	MaxPerHour       int    `yaml:"max_per_hour"`
	MaxPerIPPerHour  int    `yaml:"max_per_ip_per_hour"`
	TrustProxyHeader bool   `yaml:"trust_proxy_header"`
}

type SyncConfig struct {
	TokenHash string `yaml:"-"` // bcrypt hash, loaded from environment
}

type SchedulerConfig struct {
	PointsAuditCron string `yaml:"points_audit_cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Contact   ContactConfig   `yaml:"contact"`
	Sync      SyncConfig      `yaml:"sync"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Gallery struct {
		SeriesAliases map[string]string `yaml:"series_aliases"`
	} `yaml:"gallery"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	cfg.Sync.TokenHash = strings.TrimSpace(os.Getenv("SYNC_TOKEN_HASH"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Contact.DefaultRegion == "" {
		c.Contact.DefaultRegion = "ES"
	}
	if c.Contact.CooldownSeconds == 0 {
		c.Contact.CooldownSeconds = 60
	}
	if c.Contact.MaxPerHour == 0 {
		c.Contact.MaxPerHour = 5
	}
	if c.Contact.MaxPerIPPerHour == 0 {
		c.Contact.MaxPerIPPerHour = 20
	}
	if c.Email.ClubName == "" {
		c.Email.ClubName = "Club de Fútbol"
	}
	if c.Email.AdminSender == "" {
		c.Email.AdminSender = c.Email.Sender
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.Scheduler.PointsAuditCron == "" {
		c.Scheduler.PointsAuditCron = "*/30 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if _, err := cron.ParseStandard(c.Scheduler.PointsAuditCron); err != nil {
		return fmt.Errorf("invalid scheduler points_audit_cron %q: %w", c.Scheduler.PointsAuditCron, err)
	}
	if c.EmailEnabled() && c.Email.AdminAddress == "" {
		return fmt.Errorf("email admin_address is required when email is configured")
	}
	if c.Contact.CooldownSeconds < 0 || c.Contact.MaxPerHour < 0 || c.Contact.MaxPerIPPerHour < 0 {
		return fmt.Errorf("contact rate limits must not be negative")
	}

	return nil
}

// EmailEnabled reports whether enough configuration is present to build the SES client.
func (c *Config) EmailEnabled() bool {
	return c.Email.Region != "" && c.Email.Sender != "" && c.Email.AccessKeyID != "" && c.Email.SecretAccessKey != ""
}
