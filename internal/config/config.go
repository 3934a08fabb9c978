package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Velneo   VelneoConfig   `mapstructure:"velneo"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Document DocumentConfig `mapstructure:"document"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis settings, used for the tenant config cache and
// the background task queue.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// AuthConfig holds JWT verification settings. Token issuance belongs to the
// identity provider; this service only verifies.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// VelneoConfig holds defaults for the remote partner API. Per-tenant routing
// configuration overrides BaseURL, APIKey and Timeout.
type VelneoConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// DispatchConfig controls backend routing.
type DispatchConfig struct {
	// Policy selects how tenant routing configuration is obtained:
	// "store" reads per-tenant rows, "static" applies Mode to every tenant.
	Policy string `mapstructure:"policy"`
	// Mode is the fixed backend for the static policy: local or remote.
	Mode string `mapstructure:"mode"`
	// FallbackEnabled allows remote failures to be retried against the
	// local store.
	FallbackEnabled bool `mapstructure:"fallback_enabled"`
	// MirrorWrites copies successful remote writes into the local store.
	MirrorWrites bool `mapstructure:"mirror_writes"`
	// ConfigCacheTTL bounds staleness of cached tenant routing config.
	ConfigCacheTTL string `mapstructure:"config_cache_ttl"`
}

// DocumentConfig controls scanned policy document ingestion.
type DocumentConfig struct {
	StoragePath string `mapstructure:"storage_path"`
	MaxFileSize int64  `mapstructure:"max_file_size"` // bytes
	QueueName   string `mapstructure:"queue_name"`
	Concurrency int    `mapstructure:"concurrency"`
}

// ConfigCacheTTLDuration parses DispatchConfig.ConfigCacheTTL, defaulting
// to 30 seconds when unset or invalid.
func (d DispatchConfig) ConfigCacheTTLDuration() time.Duration {
	if d.ConfigCacheTTL == "" {
		return 30 * time.Second
	}
	ttl, err := time.ParseDuration(d.ConfigCacheTTL)
	if err != nil || ttl <= 0 {
		return 30 * time.Second
	}
	return ttl
}

var globalConfig *Config

// Load reads configuration for the given environment (dev, prod, test).
// Environment variables prefixed with APP_ override file values.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		v.SetConfigName(env) // dev.yaml, prod.yaml
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the global configuration and panics if Load has not been called.
func Get() *Config {
	if globalConfig == nil {
		panic("config: not loaded, call Load() first")
	}
	return globalConfig
}

// GetDSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the host:port address for Redis.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
