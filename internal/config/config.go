package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BOOKING"

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string understood by the pgx driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// DatabaseURL returns the URL form used by golang-migrate.
func (d DatabaseConfig) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// KafkaConfig holds broker settings. Messaging is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// RedisConfig holds settings for the idempotency store. Disabled when Addr is empty.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	UserIDHeader string
	AdminToken   string
	CORSOrigins  []string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	Store       string
	DBConfig    DatabaseConfig
	KafkaConfig KafkaConfig
	RedisConfig RedisConfig
	HTTPConfig  HTTPConfig
}

// Load reads configuration from BOOKING_* environment variables and an optional .env file.
// Keys in the .env file omit the prefix (SERVICE_PORT=8080).
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   ":" + strings.TrimPrefix(v.GetString("service_port"), ":"),
		AppEnv: v.GetString("app_env"),
		Store:  strings.ToLower(v.GetString("store")),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("kafka_brokers")),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		RedisConfig: RedisConfig{
			Addr:           v.GetString("redis_addr"),
			Password:       v.GetString("redis_password"),
			DB:             v.GetInt("redis_db"),
			IdempotencyTTL: v.GetDuration("idempotency_ttl"),
		},
		HTTPConfig: HTTPConfig{
			UserIDHeader: v.GetString("user_id_header"),
			AdminToken:   v.GetString("admin_token"),
			CORSOrigins:  splitList(v.GetString("cors_origins")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot start with.
func (c *ServiceConfig) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBConfig.Host == "" || c.DBConfig.DBName == "" {
			return errors.New("db_host and db_name are required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.HTTPConfig.UserIDHeader == "" {
		return errors.New("user_id_header must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "shareit_booking")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_group_prefix", "shareit-")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("idempotency_ttl", 5*time.Minute)
	v.SetDefault("user_id_header", "X-Sharer-User-Id")
	v.SetDefault("admin_token", "")
	v.SetDefault("cors_origins", "*")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
