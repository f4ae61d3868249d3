package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	RecordHub RecordHubConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Sessions  SessionConfig
	Audit     AuditConfig
	Database  DatabaseConfig
}

// RecordHubConfig points the gateway at the remote record service.
type RecordHubConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
	PageLimit int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig verifies tokens issued by the external identity provider.
// MutatorRoles, when set, restricts destructive routes to those roles.
type AuthConfig struct {
	Secret       string
	Issuer       string
	Audience     string
	MutatorRoles []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs summary exposure and cache tuning.
type DashboardConfig struct {
	CacheTTL    time.Duration
	SampleLimit int
}

// SessionConfig tunes per-session list controller retention.
type SessionConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// AuditConfig toggles mutation audit logging.
type AuditConfig struct {
	Enabled bool
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.RecordHub = RecordHubConfig{
		BaseURL:   v.GetString("RECORDHUB_BASE_URL"),
		ProjectID: v.GetString("RECORDHUB_PROJECT_ID"),
		PublicKey: v.GetString("RECORDHUB_PUBLIC_KEY"),
		Timeout:   parseDuration(v.GetString("RECORDHUB_TIMEOUT"), 10*time.Second),
		PageLimit: v.GetInt("RECORDHUB_PAGE_LIMIT"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Secret:       v.GetString("AUTH_JWT_SECRET"),
		Issuer:       v.GetString("AUTH_JWT_ISSUER"),
		Audience:     v.GetString("AUTH_JWT_AUDIENCE"),
		MutatorRoles: splitAndTrim(v.GetString("AUTH_MUTATOR_ROLES")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:    parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		SampleLimit: v.GetInt("DASHBOARD_SAMPLE_LIMIT"),
	}

	cfg.Sessions = SessionConfig{
		IdleTTL:         parseDuration(v.GetString("SESSION_IDLE_TTL"), 30*time.Minute),
		CleanupInterval: parseDuration(v.GetString("SESSION_CLEANUP_INTERVAL"), 10*time.Minute),
	}

	cfg.Audit = AuditConfig{
		Enabled: v.GetBool("ENABLE_AUDIT"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("RECORDHUB_BASE_URL", "http://localhost:9090")
	v.SetDefault("RECORDHUB_PROJECT_ID", "")
	v.SetDefault("RECORDHUB_PUBLIC_KEY", "")
	v.SetDefault("RECORDHUB_TIMEOUT", "10s")
	v.SetDefault("RECORDHUB_PAGE_LIMIT", 100)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_JWT_SECRET", "dev_secret")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("AUTH_JWT_AUDIENCE", "")
	v.SetDefault("AUTH_MUTATOR_ROLES", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_SAMPLE_LIMIT", 500)

	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_CLEANUP_INTERVAL", "10m")

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "edutrack")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
