package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	JWT        JWTConfig        `yaml:"jwt"`
	Redis      RedisConfig      `yaml:"redis"`
	Invitation InvitationConfig `yaml:"invitation"`
	QR         QRConfig         `yaml:"qr"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains notification delivery settings
type SendGridConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	BaseURL  string `yaml:"base_url"` // registration portal base URL embedded in invitation links
}

// JWTConfig contains session token settings
type JWTConfig struct {
	Secret               string `yaml:"secret"`
	SessionExpiryMinutes int    `yaml:"session_expiry_minutes"`
}

// RedisConfig contains rate-limiter backend settings. Leave Addr empty to
// disable rate limiting (handlers degrade to pass-through).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// InvitationConfig contains invitation issuance settings
type InvitationConfig struct {
	DefaultExpiryHours int `yaml:"default_expiry_hours"`
	SessionHours       int `yaml:"session_hours"`
	CodeLength         int `yaml:"code_length"`
	PinLength          int `yaml:"pin_length"`
}

// QRConfig contains cross-device login settings
type QRConfig struct {
	ExpirySeconds    int `yaml:"expiry_seconds"`
	PinWindowSeconds int `yaml:"pin_window_seconds"`
	MaxPinAttempts   int `yaml:"max_pin_attempts"`
	LockoutMinutes   int `yaml:"lockout_minutes"`
}

// StorageConfig contains file upload settings
type StorageConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	MaxFileSize int64  `yaml:"max_file_size_mb"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireInvitations  string `yaml:"expire_invitations"`
	ExpireQRSessions   string `yaml:"expire_qr_sessions"`
	ExpireInfoRequests string `yaml:"expire_info_requests"`
	InfoRequestMaxDays int    `yaml:"info_request_max_days"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM"); val != "" {
		c.SendGrid.From = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.SessionExpiryMinutes == 0 {
		c.JWT.SessionExpiryMinutes = 30
	}

	// Invitation defaults: 24h link, 5h registration session, 15-char code,
	// 6-digit PIN (original portal contract).
	if c.Invitation.DefaultExpiryHours == 0 {
		c.Invitation.DefaultExpiryHours = 24
	}
	if c.Invitation.SessionHours == 0 {
		c.Invitation.SessionHours = 5
	}
	if c.Invitation.CodeLength == 0 {
		c.Invitation.CodeLength = 15
	}
	if c.Invitation.PinLength == 0 {
		c.Invitation.PinLength = 6
	}

	// QR defaults: 300s QR window, 2-minute PIN window, 3 attempts, 15-minute
	// lockout.
	if c.QR.ExpirySeconds == 0 {
		c.QR.ExpirySeconds = 300
	}
	if c.QR.PinWindowSeconds == 0 {
		c.QR.PinWindowSeconds = 120
	}
	if c.QR.MaxPinAttempts == 0 {
		c.QR.MaxPinAttempts = 3
	}
	if c.QR.LockoutMinutes == 0 {
		c.QR.LockoutMinutes = 15
	}

	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}

	// Scheduler defaults (UTC, with seconds precision)
	if c.Scheduler.ExpireInvitations == "" {
		c.Scheduler.ExpireInvitations = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.ExpireQRSessions == "" {
		c.Scheduler.ExpireQRSessions = "0 * * * * *" // every minute
	}
	if c.Scheduler.ExpireInfoRequests == "" {
		c.Scheduler.ExpireInfoRequests = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.InfoRequestMaxDays == 0 {
		c.Scheduler.InfoRequestMaxDays = 30
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
