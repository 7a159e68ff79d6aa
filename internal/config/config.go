package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Queue  QueueConfig
	Ledger LedgerConfig
}

// LedgerConfig holds classification settings shared by every source profile.
type LedgerConfig struct {
	DisallowMarker string `mapstructure:"disallow_marker"`
	// MappingFile optionally points at a YAML file of extra column header aliases.
	MappingFile string `mapstructure:"mapping_file"`
}

// QueueConfig holds process queue worker settings.
type QueueConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	PollIntervalSecs int  `mapstructure:"poll_interval_secs"`
	MaxRetries       int  `mapstructure:"max_retries"`
	Concurrency      int  `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
	// ConnMaxLifetime recycles pooled connections; zero keeps them indefinitely.
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds the distributed document lock settings. When disabled the
// server serializes mutations in process only.
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
	LockWait  time.Duration `mapstructure:"lock_wait"`
	LockRetry time.Duration `mapstructure:"lock_retry"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the GSTLEDGER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstledger")
	v.SetDefault("db.password", "gstledger_secret")
	v.SetDefault("db.name", "gstledger_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "30s")
	v.SetDefault("redis.lock_wait", "15s")
	v.SetDefault("redis.lock_retry", "50ms")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "gstledger-imports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Ledger defaults
	v.SetDefault("ledger.disallow_marker", "disallow")
	v.SetDefault("ledger.mapping_file", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "GSTLEDGER_SERVER_PORT",
		"server.read_timeout":      "GSTLEDGER_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "GSTLEDGER_SERVER_WRITE_TIMEOUT",
		"server.environment":       "GSTLEDGER_SERVER_ENVIRONMENT",
		"db.host":                  "GSTLEDGER_DB_HOST",
		"db.port":                  "GSTLEDGER_DB_PORT",
		"db.user":                  "GSTLEDGER_DB_USER",
		"db.password":              "GSTLEDGER_DB_PASSWORD",
		"db.name":                  "GSTLEDGER_DB_NAME",
		"db.sslmode":               "GSTLEDGER_DB_SSLMODE",
		"db.max_open":              "GSTLEDGER_DB_MAX_OPEN",
		"db.max_idle":              "GSTLEDGER_DB_MAX_IDLE",
		"db.conn_max_lifetime":     "GSTLEDGER_DB_CONN_MAX_LIFETIME",
		"redis.enabled":            "GSTLEDGER_REDIS_ENABLED",
		"redis.addr":               "GSTLEDGER_REDIS_ADDR",
		"redis.password":           "GSTLEDGER_REDIS_PASSWORD",
		"redis.db":                 "GSTLEDGER_REDIS_DB",
		"redis.lock_ttl":           "GSTLEDGER_REDIS_LOCK_TTL",
		"redis.lock_wait":          "GSTLEDGER_REDIS_LOCK_WAIT",
		"redis.lock_retry":         "GSTLEDGER_REDIS_LOCK_RETRY",
		"s3.region":                "GSTLEDGER_S3_REGION",
		"s3.bucket":                "GSTLEDGER_S3_BUCKET",
		"s3.endpoint":              "GSTLEDGER_S3_ENDPOINT",
		"s3.access_key":            "GSTLEDGER_S3_ACCESS_KEY",
		"s3.secret_key":            "GSTLEDGER_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "GSTLEDGER_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "GSTLEDGER_S3_PRESIGN_EXPIRY",
		"log.level":                "GSTLEDGER_LOG_LEVEL",
		"log.format":               "GSTLEDGER_LOG_FORMAT",
		"cors.allowed_origins":     "GSTLEDGER_CORS_ALLOWED_ORIGINS",
		"queue.enabled":            "GSTLEDGER_QUEUE_ENABLED",
		"queue.poll_interval_secs": "GSTLEDGER_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "GSTLEDGER_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "GSTLEDGER_QUEUE_CONCURRENCY",
		"ledger.disallow_marker":   "GSTLEDGER_LEDGER_DISALLOW_MARKER",
		"ledger.mapping_file":      "GSTLEDGER_LEDGER_MAPPING_FILE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms that inject PORT win only when the explicit variable is unset.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GSTLEDGER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
	cfg.Redis = RedisConfig{
		Enabled:   v.GetBool("redis.enabled"),
		Addr:      v.GetString("redis.addr"),
		Password:  v.GetString("redis.password"),
		DB:        v.GetInt("redis.db"),
		LockTTL:   v.GetDuration("redis.lock_ttl"),
		LockWait:  v.GetDuration("redis.lock_wait"),
		LockRetry: v.GetDuration("redis.lock_retry"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Queue = QueueConfig{
		Enabled:          v.GetBool("queue.enabled"),
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Ledger = LedgerConfig{
		DisallowMarker: strings.TrimSpace(v.GetString("ledger.disallow_marker")),
		MappingFile:    v.GetString("ledger.mapping_file"),
	}
	if cfg.Ledger.DisallowMarker == "" {
		return nil, fmt.Errorf("config: ledger.disallow_marker must not be empty")
	}
	if cfg.Redis.Enabled && (cfg.Redis.LockTTL <= 0 || cfg.Redis.LockRetry <= 0 || cfg.Redis.LockWait <= 0) {
		return nil, fmt.Errorf("config: redis lock_ttl, lock_wait and lock_retry must be positive")
	}
	if cfg.Queue.Concurrency < 1 {
		return nil, fmt.Errorf("config: queue.concurrency must be at least 1")
	}

	return cfg, nil
}
