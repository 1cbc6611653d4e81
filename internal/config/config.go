package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Log    LogConfig    `mapstructure:"log"`
	Notify NotifyConfig `mapstructure:"notify"`
	Policy PolicyConfig `mapstructure:"policy"`
	Mock   MockConfig   `mapstructure:"mock"`
}

// APIConfig points the client at the REST store
type APIConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ClientPermissionIDs bool          `mapstructure:"client_permission_ids"` // send perm_<ms> ids on create
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// NotifyConfig holds the optional notification feed
type NotifyConfig struct {
	ValkeyAddr string `mapstructure:"valkey_addr"` // empty disables publishing
	Channel    string `mapstructure:"channel"`
}

// PolicyConfig is where `policy sync` writes casbin rules
type PolicyConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// MockConfig configures the bundled mock store
type MockConfig struct {
	Port     int            `mapstructure:"port"`
	Mode     string         `mapstructure:"mode"` // "development" or "production"
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
}

// EnvPrefix is prepended to every environment override, e.g. RBACADMIN_API_BASE_URL.
const EnvPrefix = "RBACADMIN"

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3001")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.client_permission_ids", false)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "warn")
	v.SetDefault("notify.valkey_addr", "")
	v.SetDefault("notify.channel", "rbacadmin:notifications")
	v.SetDefault("policy.driver", "sqlite")
	v.SetDefault("policy.dsn", "./rbacadmin-policy.db")
	v.SetDefault("mock.port", 3001)
	v.SetDefault("mock.mode", "development")
	v.SetDefault("mock.database.driver", "sqlite")
	v.SetDefault("mock.database.dsn", "file::memory:?cache=shared")
	v.SetDefault("mock.database.max_idle_conns", 10)
	v.SetDefault("mock.database.max_open_conns", 100)
	v.SetDefault("mock.database.conn_max_lifetime", 60) // 60 minutes
}

// Load reads configuration from file and environment variables. An explicit path
// must exist; otherwise ./config.yaml and $XDG_CONFIG_HOME/rbacadmin/config.yaml
// are tried and silently skipped when absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "rbacadmin"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return &cfg, nil
}
