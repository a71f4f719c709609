// Package config loads service settings from defaults, an optional YAML file,
// .env and PANTRY_ environment variables through viper
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root of the settings tree
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig identifies the process and controls logging
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	// DemoUserID gets the default locations seeded on startup when set.
	DemoUserID string `mapstructure:"demo_user_id"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	MaxHeaderBytes  int             `mapstructure:"max_header_bytes"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	EnableCORS      bool            `mapstructure:"enable_cors"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	EnableH2C       bool            `mapstructure:"enable_h2c"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits requests per user over a sliding window
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig selects sqlite or postgres and sizes the pool
type DatabaseConfig struct {
	Driver             string        `mapstructure:"driver"`
	Path               string        `mapstructure:"path"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Database           string        `mapstructure:"database"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	SSLMode            string        `mapstructure:"ssl_mode"`
	ReadReplicas       []string      `mapstructure:"read_replicas"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel           string        `mapstructure:"log_level"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	AutoMigrate        bool          `mapstructure:"auto_migrate"`
}

// RedisConfig addresses the optional redis server
type RedisConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	Database      int           `mapstructure:"database"`
	MaxRetries    int           `mapstructure:"max_retries"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	PoolSize      int           `mapstructure:"pool_size"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableCluster bool          `mapstructure:"enable_cluster"`
	ClusterNodes  []string      `mapstructure:"cluster_nodes"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
}

// CacheConfig selects the cache and submission guard backend
type CacheConfig struct {
	Driver          string        `mapstructure:"driver"`
	ClassifierTTL   time.Duration `mapstructure:"classifier_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ClassifierConfig contains location classifier configuration
type ClassifierConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestsPerMin int           `mapstructure:"requests_per_min"`
	Burst          int           `mapstructure:"burst"`
	EnableCache    bool          `mapstructure:"enable_cache"`
	// The circuit opens after BreakerFailures consecutive errors and stays
	// open for BreakerCooldown.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// ReconcileConfig tunes the reconciliation use cases
type ReconcileConfig struct {
	CommitConcurrency   int           `mapstructure:"commit_concurrency"`
	ClassifierTimeout   time.Duration `mapstructure:"classifier_timeout"`
	GuardTTL            time.Duration `mapstructure:"guard_ttl"`
	DefaultLocationName string        `mapstructure:"default_location_name"`
}

// MonitoringConfig controls metrics and tracing export
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	MetricsPath     string  `mapstructure:"metrics_path"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	HealthCheckPath string  `mapstructure:"health_check_path"`
}

// Load loads configuration from .env, the config file and environment variables
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadAndWatch loads the configuration and calls onChange with the new
// configuration each time the config file changes. Invalid edits are reported
// through onError and the previous configuration stays in effect.
func LoadAndWatch(configPath string, onChange func(*Config), onError func(error)) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				return
			}
			updated, err := decode(v)
			if err != nil {
				if onError != nil {
					onError(fmt.Errorf("reload %s: %w", e.Name, err))
				}
				return
			}
			onChange(updated)
		})
		v.WatchConfig()
	}

	return cfg, nil
}

func newViper(configPath string) (*viper.Viper, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pantry")
	}

	v.SetEnvPrefix("PANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "pantry")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("app.demo_user_id", "")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "25s")
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.enable_h2c", false)
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "pantry.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "pantry")
	v.SetDefault("database.username", "pantry")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "pantry:")

	// Cache defaults
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.classifier_ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "1m")

	// Classifier defaults
	v.SetDefault("classifier.provider", "keyword")
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.model", "gpt-4o-mini")
	v.SetDefault("classifier.temperature", 0.0)
	v.SetDefault("classifier.max_tokens", 800)
	v.SetDefault("classifier.timeout", "20s")
	v.SetDefault("classifier.requests_per_min", 30)
	v.SetDefault("classifier.burst", 5)
	v.SetDefault("classifier.enable_cache", true)
	v.SetDefault("classifier.breaker_failures", 5)
	v.SetDefault("classifier.breaker_cooldown", "30s")

	// Reconcile defaults
	v.SetDefault("reconcile.commit_concurrency", 8)
	v.SetDefault("reconcile.classifier_timeout", "10s")
	v.SetDefault("reconcile.guard_ttl", "30s")
	v.SetDefault("reconcile.default_location_name", "Pantry")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.otlp_endpoint", "localhost:4318")
	v.SetDefault("monitoring.otlp_insecure", true)
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_check_path", "/health")
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Requests < 1 || c.Server.RateLimit.Window <= 0) {
		return fmt.Errorf("server.rate_limit needs positive requests and window")
	}

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}

	switch c.Classifier.Provider {
	case "keyword", "openai", "ollama":
	default:
		return fmt.Errorf("classifier.provider must be keyword, openai or ollama, got %q", c.Classifier.Provider)
	}

	if c.Reconcile.CommitConcurrency < 1 {
		return fmt.Errorf("reconcile.commit_concurrency must be at least 1")
	}

	if c.Reconcile.ClassifierTimeout <= 0 {
		return fmt.Errorf("reconcile.classifier_timeout must be positive")
	}

	if c.Monitoring.SamplingRate < 0 || c.Monitoring.SamplingRate > 1 {
		return fmt.Errorf("monitoring.sampling_rate must be between 0 and 1")
	}

	return nil
}

// IsDevelopment reports the development environment, which logs with
// development encoders and stack traces
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetDSN returns the primary postgres connection string
func (c *Config) GetDSN() string {
	return c.dsnFor(c.Database.Host)
}

// GetReplicaDSNs returns a connection string per configured read replica host
func (c *Config) GetReplicaDSNs() []string {
	dsns := make([]string, 0, len(c.Database.ReadReplicas))
	for _, host := range c.Database.ReadReplicas {
		dsns = append(dsns, c.dsnFor(host))
	}
	return dsns
}

func (c *Config) dsnFor(host string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// RedisAddr returns host:port of the redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
