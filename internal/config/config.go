package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Zoho     ZohoConfig     `yaml:"zoho"`
	Inbox    InboxConfig    `yaml:"inbox"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownSeconds int      `yaml:"shutdown_seconds"`
	MaxUploadMB     int      `yaml:"max_upload_mb"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

func (c DatabaseConfig) ConnLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Minute
}

// RedisConfig holds cache settings. The dashboard works without Redis; the
// cache only shortcuts snapshot recomputation.
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ZohoConfig holds Zoho Desk API credentials for the ticket sync.
type ZohoConfig struct {
	Enabled             bool              `yaml:"enabled"`
	ClientID            string            `yaml:"client_id"`
	ClientSecret        string            `yaml:"client_secret"`
	RefreshToken        string            `yaml:"refresh_token"`
	OrgID               string            `yaml:"org_id"`
	BaseURL             string            `yaml:"base_url"`
	AccountsURL         string            `yaml:"accounts_url"`
	DepartmentIDs       map[string]string `yaml:"department_ids"` // department name -> Zoho department id
	SyncIntervalMinutes int               `yaml:"sync_interval_minutes"`
	TimeoutSeconds      int               `yaml:"timeout_seconds"`
}

// InboxConfig holds S3 drop-folder polling settings.
type InboxConfig struct {
	Enabled         bool   `yaml:"enabled"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Region        string `yaml:"s3_region"`
	AWSProfile      string `yaml:"aws_profile"`
	Prefix          string `yaml:"prefix"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII bool   `yaml:"redact_pii"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ShutdownSeconds == 0 {
		cfg.Server.ShutdownSeconds = 15
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 25
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.Zoho.BaseURL == "" {
		cfg.Zoho.BaseURL = "https://desk.zoho.eu"
	}
	if cfg.Zoho.AccountsURL == "" {
		cfg.Zoho.AccountsURL = "https://accounts.zoho.eu"
	}
	if cfg.Zoho.SyncIntervalMinutes == 0 {
		cfg.Zoho.SyncIntervalMinutes = 60
	}
	if cfg.Zoho.TimeoutSeconds == 0 {
		cfg.Zoho.TimeoutSeconds = 30
	}
	if cfg.Inbox.IntervalMinutes == 0 {
		cfg.Inbox.IntervalMinutes = 15
	}
	if cfg.Inbox.S3Region == "" {
		cfg.Inbox.S3Region = "eu-south-1"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from a YAML file, then overrides secrets
// and connection strings with environment variables when present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if id := os.Getenv("ZOHO_CLIENT_ID"); id != "" {
		cfg.Zoho.ClientID = id
	}
	if secret := os.Getenv("ZOHO_CLIENT_SECRET"); secret != "" {
		cfg.Zoho.ClientSecret = secret
	}
	if token := os.Getenv("ZOHO_REFRESH_TOKEN"); token != "" {
		cfg.Zoho.RefreshToken = token
	}
	if org := os.Getenv("ZOHO_ORG_ID"); org != "" {
		cfg.Zoho.OrgID = org
	}
	if bucket := os.Getenv("INBOX_S3_BUCKET"); bucket != "" {
		cfg.Inbox.S3Bucket = bucket
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg, nil
}
