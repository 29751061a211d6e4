package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Payments  PaymentsConfig  `yaml:"payments"`
	ESign     ESignConfig     `yaml:"esign"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Business  BusinessConfig  `yaml:"business"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int    `yaml:"write_timeout_seconds"`
	ShutdownSec     int    `yaml:"shutdown_timeout_seconds"`
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

// PaymentsConfig contains payment provider settings
type PaymentsConfig struct {
	BaseURL     string `yaml:"base_url"`
	ClientID    string `yaml:"client_id"`
	APIKey      string `yaml:"api_key"`
	ChecksumKey string `yaml:"checksum_key"`
	ReturnURL   string `yaml:"return_url"`
	CancelURL   string `yaml:"cancel_url"`
	TimeoutSec  int    `yaml:"timeout_seconds"`
}

// ESignConfig contains e-signature provider settings
type ESignConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TimeoutSec   int    `yaml:"timeout_seconds"`
}

// SendGridConfig contains transactional email settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// FirebaseConfig contains FCM push settings
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// JWTConfig contains JWT validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BusinessConfig contains marketplace business rules
type BusinessConfig struct {
	Timezone           string `yaml:"timezone"`
	DepositPercent     int    `yaml:"deposit_percent"`
	PlatformFeePercent int    `yaml:"platform_fee_percent"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	AutoCompleteRentals  string `yaml:"auto_complete_rentals"`
	SendPaymentReminders string `yaml:"send_payment_reminders"`
	PurgeCredentials     string `yaml:"purge_credentials"`
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
	// Database
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

	// Payment provider
	if val := os.Getenv("PAYMENTS_CLIENT_ID"); val != "" {
		c.Payments.ClientID = val
	}
	if val := os.Getenv("PAYMENTS_API_KEY"); val != "" {
		c.Payments.APIKey = val
	}
	if val := os.Getenv("PAYMENTS_CHECKSUM_KEY"); val != "" {
		c.Payments.ChecksumKey = val
	}

	// E-signature provider
	if val := os.Getenv("ESIGN_CLIENT_ID"); val != "" {
		c.ESign.ClientID = val
	}
	if val := os.Getenv("ESIGN_CLIENT_SECRET"); val != "" {
		c.ESign.ClientSecret = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}

	// Firebase
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Firebase.CredentialsFile = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
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
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 15
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 15
	}
	if c.Server.ShutdownSec == 0 {
		c.Server.ShutdownSec = 10
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Payment provider validation
	if c.Payments.BaseURL == "" {
		return fmt.Errorf("payment provider base URL is required")
	}
	if c.Payments.TimeoutSec == 0 {
		c.Payments.TimeoutSec = 10
	}

	// E-signature defaults
	if c.ESign.TimeoutSec == 0 {
		c.ESign.TimeoutSec = 15
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Business defaults
	if c.Business.Timezone == "" {
		c.Business.Timezone = "Asia/Ho_Chi_Minh"
	}
	if c.Business.DepositPercent == 0 {
		c.Business.DepositPercent = 30
	}
	if c.Business.PlatformFeePercent == 0 {
		c.Business.PlatformFeePercent = 10
	}
	if c.Business.DepositPercent < 0 || c.Business.DepositPercent > 100 {
		return fmt.Errorf("invalid deposit percent: %d", c.Business.DepositPercent)
	}

	// Scheduler defaults
	if c.Scheduler.AutoCompleteRentals == "" {
		c.Scheduler.AutoCompleteRentals = "0 0 2 * * *" // 2 AM
	}
	if c.Scheduler.SendPaymentReminders == "" {
		c.Scheduler.SendPaymentReminders = "0 0 9 * * *" // 9 AM
	}
	if c.Scheduler.PurgeCredentials == "" {
		c.Scheduler.PurgeCredentials = "0 30 3 * * *" // 3:30 AM
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
