package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Azure    AzureConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AzureConfig holds Azure service configuration. Both services are optional:
// without OpenAI, clarifications fall back to a canned message; without
// Storage, report export is disabled.
type AzureConfig struct {
	OpenAI  OpenAIConfig
	Storage StorageConfig
}

// OpenAIConfig holds Azure OpenAI configuration
type OpenAIConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// StorageConfig holds Azure Blob Storage configuration
type StorageConfig struct {
	AccountName     string
	AccountKey      string
	ReportContainer string
}

// SecurityConfig holds at-rest encryption configuration. The key is base64
// encoded and must decode to 32 bytes; empty disables history encryption.
type SecurityConfig struct {
	EncryptionKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// Azure Storage defaults
	v.SetDefault("azure.storage.reportcontainer", "assessment-reports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Azure OpenAI
	v.BindEnv("azure.openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("azure.openai.apikey", "AZURE_OPENAI_API_KEY")
	v.BindEnv("azure.openai.deployment", "AZURE_OPENAI_DEPLOYMENT")

	// Azure Storage
	v.BindEnv("azure.storage.accountname", "AZURE_STORAGE_ACCOUNT_NAME")
	v.BindEnv("azure.storage.accountkey", "AZURE_STORAGE_ACCOUNT_KEY")
	v.BindEnv("azure.storage.reportcontainer", "AZURE_STORAGE_REPORT_CONTAINER")

	// Security
	v.BindEnv("security.encryptionkey", "HISTORY_ENCRYPTION_KEY")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if _, err := c.DecodedEncryptionKey(); err != nil {
		return err
	}

	// OpenAI settings come as a set or not at all.
	openAISet := c.Azure.OpenAI.Endpoint != "" || c.Azure.OpenAI.APIKey != "" || c.Azure.OpenAI.Deployment != ""
	if openAISet && (c.Azure.OpenAI.Endpoint == "" || c.Azure.OpenAI.APIKey == "" || c.Azure.OpenAI.Deployment == "") {
		return fmt.Errorf("azure openai requires endpoint, apikey, and deployment together")
	}

	storageSet := c.Azure.Storage.AccountName != "" || c.Azure.Storage.AccountKey != ""
	if storageSet && (c.Azure.Storage.AccountName == "" || c.Azure.Storage.AccountKey == "") {
		return fmt.Errorf("azure storage requires account name and key together")
	}

	return nil
}

// OpenAIEnabled reports whether Azure OpenAI is configured.
func (c *Config) OpenAIEnabled() bool {
	return c.Azure.OpenAI.Endpoint != "" && c.Azure.OpenAI.APIKey != "" && c.Azure.OpenAI.Deployment != ""
}

// StorageEnabled reports whether Azure Blob Storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.Azure.Storage.AccountName != "" && c.Azure.Storage.AccountKey != ""
}

// DecodedEncryptionKey returns the raw 32-byte history encryption key, or nil
// when encryption is disabled.
func (c *Config) DecodedEncryptionKey() ([]byte, error) {
	if c.Security.EncryptionKey == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(c.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("security.encryptionkey must be base64 encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("security.encryptionkey must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
