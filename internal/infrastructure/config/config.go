package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Telemetry   TelemetryConfig
	Transfer    TransferConfig
	Queue       QueueConfig
	Storage     StorageConfig
	Idempotency IdempotencyConfig
	Swagger     SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds the settings used to verify access tokens
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
	// RateLimit is the request budget per caller and RateWindow; 0 disables it
	RateLimit       int
	RateWindow      time.Duration
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled bool
	PyroscopeAddress string
}

// TransferConfig holds the business defaults applied to transfer requests
type TransferConfig struct {
	// EditDays limits edits to transaction_date + EditDays; 0 disables the limit
	EditDays          int
	AccountingMethod  string // fifo, lifo or fefo
	AllowOverselling  bool
	MaxRetries        int
	UnitOfWorkTimeout time.Duration
	RetryBaseDelay    time.Duration
}

// QueueConfig holds asynq settings for notification delivery
type QueueConfig struct {
	Enabled     bool
	Concurrency int
	Queue       string
	MaxRetry    int
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// IdempotencyConfig controls the Idempotency-Key replay guard
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SwaggerConfig controls the /swagger API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // serve the docs only to callers with a valid token
	AllowedIPs  []string // IPs or CIDRs; empty allows everyone
}

// defaults are the built-in values, keyed the way config.toml spells them
var defaults = map[string]any{
	"app.name":                          "stock-transfer",
	"app.env":                           "development",
	"app.port":                          "8080",
	"database.host":                     "localhost",
	"database.port":                     5432,
	"database.user":                     "postgres",
	"database.dbname":                   "erp",
	"database.sslmode":                  "disable",
	"database.max_open_conns":           25,
	"database.max_idle_conns":           5,
	"database.conn_max_lifetime":        60,
	"database.conn_max_idle_time":       30,
	"redis.host":                        "localhost",
	"redis.port":                        6379,
	"jwt.issuer":                        "stock-transfer",
	"jwt.access_token_expiration":       15 * time.Minute,
	"log.level":                         "info",
	"log.format":                        "console",
	"log.output":                        "stdout",
	"http.read_timeout":                 15 * time.Second,
	"http.write_timeout":                15 * time.Second,
	"http.idle_timeout":                 60 * time.Second,
	"http.shutdown_timeout":             30 * time.Second,
	"http.max_header_bytes":             1 << 20,
	"http.max_body_size":                2 << 20,
	"http.rate_limit":                   300,
	"http.rate_window":                  time.Minute,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.metrics_interval":        60 * time.Second,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
	"telemetry.pyroscope_address":       "http://localhost:4040",
	"transfer.accounting_method":        "fifo",
	"transfer.max_retries":              3,
	"transfer.unit_of_work_timeout":     10 * time.Second,
	"transfer.retry_base_delay":         20 * time.Millisecond,
	"queue.concurrency":                 5,
	"queue.queue":                       "notifications",
	"queue.max_retry":                   5,
	"storage.region":                    "us-east-1",
	"storage.presign_expiration":        15 * time.Minute,
	"idempotency.enabled":               true,
	"idempotency.ttl":                   24 * time.Hour,
	"swagger.enabled":                   true,
}

// Load reads config.toml from the working directory or /app, then lets
// ERP_-prefixed environment variables override it (ERP_DATABASE_PASSWORD
// sets database.password). Keys set nowhere take the built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
			TrustedProxies:  v.GetStringSlice("http.trusted_proxies"),
			RateLimit:       v.GetInt("http.rate_limit"),
			RateWindow:      v.GetDuration("http.rate_window"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
		Transfer: TransferConfig{
			EditDays:          v.GetInt("transfer.edit_days"),
			AccountingMethod:  v.GetString("transfer.accounting_method"),
			AllowOverselling:  v.GetBool("transfer.allow_overselling"),
			MaxRetries:        v.GetInt("transfer.max_retries"),
			UnitOfWorkTimeout: v.GetDuration("transfer.unit_of_work_timeout"),
			RetryBaseDelay:    v.GetDuration("transfer.retry_base_delay"),
		},
		Queue: QueueConfig{
			Enabled:     v.GetBool("queue.enabled"),
			Concurrency: v.GetInt("queue.concurrency"),
			Queue:       v.GetString("queue.queue"),
			MaxRetry:    v.GetInt("queue.max_retry"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("idempotency.enabled"),
			TTL:     v.GetDuration("idempotency.ttl"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Transfer.EditDays < 0 {
		return fmt.Errorf("transfer.edit_days cannot be negative")
	}
	switch c.Transfer.AccountingMethod {
	case "fifo", "lifo", "fefo":
	default:
		return fmt.Errorf("transfer.accounting_method must be one of fifo, lifo, fefo, got %q", c.Transfer.AccountingMethod)
	}
	if c.Transfer.MaxRetries < 0 {
		return fmt.Errorf("transfer.max_retries cannot be negative")
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.bucket, storage.access_key and storage.secret_key are required when storage is enabled")
		}
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger must be disabled, require authentication or restrict IPs in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
