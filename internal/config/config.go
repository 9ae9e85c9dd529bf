package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort       string
	LogLevel       string
	LogFormat      string
	JWTSecret      string
	RequestTimeout time.Duration
	CORSOrigins    []string

	StoreDriver    string
	BoltPath       string
	PostgresDSN    string
	DBDriver       string
	KVTable        string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxIdle  time.Duration
	DBConnMaxLife  time.Duration
	RedisURL       string

	ApplyRateLimitPerMin        int
	AllowApplicationsWhenFilled bool
	CASMaxRetries               int
}

var defaults = map[string]any{
	"http_port":                      "8080",
	"log_level":                      "info",
	"log_format":                     "json",
	"request_timeout":                10 * time.Second,
	"cors_allowed_origins":           "*",
	"store_driver":                   StoreMemory,
	"bolt_path":                      "sitterboard.db",
	"db_driver":                      "pgx",
	"kv_table":                       "kv_store",
	"db_max_open_conns":              25,
	"db_max_idle_conns":              10,
	"db_conn_max_idle":               5 * time.Minute,
	"db_conn_max_life":               30 * time.Minute,
	"apply_rate_limit_per_min":       3,
	"allow_applications_when_filled": false,
	"cas_max_retries":                5,
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an optional config file (yaml, toml or json) whose
// values sit below the environment.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:                    strings.TrimSpace(v.GetString("http_port")),
		LogLevel:                    strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:                   strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		JWTSecret:                   strings.TrimSpace(v.GetString("jwt_secret")),
		RequestTimeout:              v.GetDuration("request_timeout"),
		CORSOrigins:                 splitList(v.GetString("cors_allowed_origins")),
		StoreDriver:                 strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		BoltPath:                    strings.TrimSpace(v.GetString("bolt_path")),
		PostgresDSN:                 strings.TrimSpace(v.GetString("database_url")),
		DBDriver:                    strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		KVTable:                     strings.TrimSpace(v.GetString("kv_table")),
		DBMaxOpenConns:              v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:              v.GetInt("db_max_idle_conns"),
		DBConnMaxIdle:               v.GetDuration("db_conn_max_idle"),
		DBConnMaxLife:               v.GetDuration("db_conn_max_life"),
		RedisURL:                    strings.TrimSpace(v.GetString("redis_url")),
		ApplyRateLimitPerMin:        v.GetInt("apply_rate_limit_per_min"),
		AllowApplicationsWhenFilled: v.GetBool("allow_applications_when_filled"),
		CASMaxRetries:               v.GetInt("cas_max_retries"),
	}
	if cfg.DBDriver == "pq" || cfg.DBDriver == "postgresql" {
		cfg.DBDriver = "postgres"
	}

	missing := make([]string, 0, 2)
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StoreDriver == StorePostgres && cfg.PostgresDSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	invalid := make([]string, 0, 4)
	switch cfg.StoreDriver {
	case StoreMemory, StoreBolt, StorePostgres:
	default:
		invalid = append(invalid, "STORE_DRIVER")
	}
	if cfg.DBDriver != "pgx" && cfg.DBDriver != "postgres" {
		invalid = append(invalid, "DB_DRIVER")
	}
	if cfg.StoreDriver == StoreBolt && cfg.BoltPath == "" {
		invalid = append(invalid, "BOLT_PATH")
	}
	if cfg.RequestTimeout <= 0 {
		invalid = append(invalid, "REQUEST_TIMEOUT")
	}
	if cfg.ApplyRateLimitPerMin <= 0 {
		invalid = append(invalid, "APPLY_RATE_LIMIT_PER_MIN")
	}
	if cfg.CASMaxRetries <= 0 {
		invalid = append(invalid, "CAS_MAX_RETRIES")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid config values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
