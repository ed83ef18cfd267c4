package config

import (
	"errors"
	"io/fs"
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

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Grid       GridConfig
	Reconcile  ReconcileConfig
	Validation ValidationConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GridConfig controls time grid regeneration.
type GridConfig struct {
	IncrementMinutes int
}

// ReconcileConfig governs trigger coalescing and the post-hydration wait.
type ReconcileConfig struct {
	Debounce          time.Duration
	HydrationTimeout  time.Duration
	StateCacheTTL     time.Duration
	StateCacheEnabled bool
}

// ValidationConfig configures the conflict validator.
type ValidationConfig struct {
	RulesFile          string
	IgnoredResources   []string
	RequiredActivities []string
	Clustering         string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	increment := v.GetInt("GRID_INCREMENT_MINUTES")
	if increment <= 0 {
		increment = 30
	}
	cfg.Grid = GridConfig{IncrementMinutes: increment}

	cfg.Reconcile = ReconcileConfig{
		Debounce:          parseDuration(v.GetString("MERGE_DEBOUNCE"), 750*time.Millisecond),
		HydrationTimeout:  parseDuration(v.GetString("HYDRATION_TIMEOUT"), 3*time.Second),
		StateCacheTTL:     parseDuration(v.GetString("STATE_CACHE_TTL"), 24*time.Hour),
		StateCacheEnabled: v.GetBool("ENABLE_STATE_CACHE"),
	}

	cfg.Validation = ValidationConfig{
		RulesFile:          v.GetString("VALIDATION_RULES_FILE"),
		IgnoredResources:   splitAndTrim(v.GetString("VALIDATION_IGNORED_RESOURCES")),
		RequiredActivities: splitAndTrim(v.GetString("VALIDATION_REQUIRED_ACTIVITIES")),
		Clustering:         v.GetString("VALIDATION_CLUSTERING"),
	}
	if cfg.Validation.RulesFile != "" {
		rules, err := LoadValidationRules(cfg.Validation.RulesFile)
		if err != nil {
			return nil, err
		}
		rules.Apply(&cfg.Validation)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "camp_schedule")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRID_INCREMENT_MINUTES", 30)
	v.SetDefault("MERGE_DEBOUNCE", "750ms")
	v.SetDefault("HYDRATION_TIMEOUT", "3s")
	v.SetDefault("STATE_CACHE_TTL", "24h")
	v.SetDefault("ENABLE_STATE_CACHE", true)

	v.SetDefault("VALIDATION_RULES_FILE", "")
	v.SetDefault("VALIDATION_IGNORED_RESOURCES", "free,lunch,dismissal,snack,swim time")
	v.SetDefault("VALIDATION_REQUIRED_ACTIVITIES", "lunch")
	v.SetDefault("VALIDATION_CLUSTERING", "sweep")
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

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
