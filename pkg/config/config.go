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

// Config is built once at startup and handed to each component constructor.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Data    DataConfig
	Backup  BackupConfig
	Reports ReportsConfig
	Auth    AuthConfig
	JWT     JWTConfig
	Redis   RedisConfig
	Cache   CacheConfig
	CORS    CORSConfig
	Log     LogConfig
}

// DataConfig locates the CSV data directory and tunes autosave.
type DataConfig struct {
	Dir              string
	AutosaveEnabled  bool
	AutosaveInterval time.Duration
}

// BackupConfig controls snapshot storage.
type BackupConfig struct {
	Dir       string
	KeepCount int
}

// ReportsConfig locates rendered report output.
type ReportsConfig struct {
	Dir       string
	ResultTTL time.Duration
}

// AuthConfig gates the JWT layer and seeds the admin account.
type AuthConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs the optional stats response cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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

	cfg.Data = DataConfig{
		Dir:              v.GetString("DATA_DIR"),
		AutosaveEnabled:  v.GetBool("AUTOSAVE_ENABLED"),
		AutosaveInterval: parseDuration(v.GetString("AUTOSAVE_INTERVAL"), 5*time.Minute),
	}

	cfg.Backup = BackupConfig{
		Dir:       v.GetString("BACKUP_DIR"),
		KeepCount: v.GetInt("BACKUP_KEEP_COUNT"),
	}

	cfg.Reports = ReportsConfig{
		Dir:       v.GetString("REPORTS_DIR"),
		ResultTTL: parseDuration(v.GetString("REPORTS_RESULT_TTL"), 24*time.Hour),
	}

	cfg.Auth = AuthConfig{
		Enabled:       v.GetBool("AUTH_ENABLED"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("AUTOSAVE_ENABLED", false)
	v.SetDefault("AUTOSAVE_INTERVAL", "5m")

	v.SetDefault("BACKUP_DIR", "backup")
	v.SetDefault("BACKUP_KEEP_COUNT", 10)

	v.SetDefault("REPORTS_DIR", "./exports")
	v.SetDefault("REPORTS_RESULT_TTL", "24h")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("ADMIN_EMAIL", "admin@ccrm.local")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "ccrm-api")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
