package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Application modes.
const (
	ModeCLI  = "cli"
	ModeHTTP = "http"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the settings the store needs at startup.
type Config struct {
	Mode          string
	Port          string
	UsersFile     string
	InventoryFile string
	StorageDriver string
	DatabaseDSN   string
	JWTSecret     string
	SessionTTL    time.Duration
	ReapInterval  time.Duration
	RabbitMQURL   string
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_MODE", ModeCLI)
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("USERS_FILE", "users.txt")
	v.SetDefault("INVENTORY_FILE", "inventory.txt")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("DATABASE_DSN", "bookstore.db")
	v.SetDefault("JWT_SECRET", "bookstore_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_REAP_INTERVAL", "1m")
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads the configuration from v, an optional bookstore.yaml in the
// working directory, and the environment.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetConfigName("bookstore")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		Mode:          v.GetString("APP_MODE"),
		Port:          v.GetString("APP_PORT"),
		UsersFile:     v.GetString("USERS_FILE"),
		InventoryFile: v.GetString("INVENTORY_FILE"),
		StorageDriver: v.GetString("STORAGE_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		ReapInterval:  v.GetDuration("SESSION_REAP_INTERVAL"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown modes and drivers.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeCLI, ModeHTTP:
	default:
		return fmt.Errorf("unknown APP_MODE %q", c.Mode)
	}
	switch c.StorageDriver {
	case DriverFile, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_REAP_INTERVAL must be positive, got %s", c.ReapInterval)
	}
	return nil
}
