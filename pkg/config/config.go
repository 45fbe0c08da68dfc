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

// Transition policies for report status updates.
const (
	TransitionPermissive = "permissive"
	TransitionStrict     = "strict"
)

type Config struct {
	Env  string
	Port int

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Uploads    UploadsConfig
	Google     GoogleConfig
	Geocode    GeocodeConfig
	Suggestion SuggestionConfig
	Reports    ReportsConfig
	Profiles   ProfilesConfig
	Cache      CacheConfig
	Exports    ExportsConfig

	OutboundTimeout time.Duration
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls where report images and profile pictures land.
type UploadsConfig struct {
	Dir          string
	PublicPath   string
	MaxSizeBytes int64
	JPEGQuality  int
	MaxWidth     int
}

// GoogleConfig configures ID token verification for the OAuth exchange.
type GoogleConfig struct {
	ClientID     string
	TokenInfoURL string
}

// GeocodeConfig configures the reverse geocoding proxy.
type GeocodeConfig struct {
	APIKey string
	URL    string
}

// SuggestionConfig configures the remediation suggestion generator.
type SuggestionConfig struct {
	APIKey      string
	Model       string
	URL         string
	Temperature float64
}

// ReportsConfig governs report moderation rules.
type ReportsConfig struct {
	TransitionPolicy string
	DefaultPageSize  int
	MaxPageSize      int
}

// ProfilesConfig governs profile completion.
type ProfilesConfig struct {
	AdminSignupCode string
}

// CacheConfig toggles Redis caching for list, dashboard and suggestion payloads.
type CacheConfig struct {
	Enabled       bool
	ReportsTTL    time.Duration
	DashboardTTL  time.Duration
	SuggestionTTL time.Duration
}

// ExportsConfig controls asynchronous report exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupSchedule   string
	WorkerConcurrency int
	WorkerRetries     int
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.OutboundTimeout = parseDuration(v.GetString("OUTBOUND_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 30*time.Minute),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_SIZE")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:          v.GetString("UPLOADS_DIR"),
		PublicPath:   v.GetString("UPLOADS_PUBLIC_PATH"),
		MaxSizeBytes: maxUpload,
		JPEGQuality:  v.GetInt("UPLOADS_JPEG_QUALITY"),
		MaxWidth:     v.GetInt("UPLOADS_MAX_WIDTH"),
	}

	cfg.Google = GoogleConfig{
		ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		TokenInfoURL: v.GetString("GOOGLE_TOKENINFO_URL"),
	}

	cfg.Geocode = GeocodeConfig{
		APIKey: v.GetString("OPENCAGE_API_KEY"),
		URL:    v.GetString("OPENCAGE_URL"),
	}

	cfg.Suggestion = SuggestionConfig{
		APIKey:      v.GetString("GEMINI_API_KEY"),
		Model:       v.GetString("GEMINI_MODEL"),
		URL:         v.GetString("GEMINI_URL"),
		Temperature: v.GetFloat64("GEMINI_TEMPERATURE"),
	}

	cfg.Reports = ReportsConfig{
		TransitionPolicy: normalisePolicy(v.GetString("STATUS_TRANSITION_POLICY")),
		DefaultPageSize:  v.GetInt("REPORTS_PAGE_SIZE"),
		MaxPageSize:      v.GetInt("REPORTS_MAX_PAGE_SIZE"),
	}

	cfg.Profiles = ProfilesConfig{AdminSignupCode: v.GetString("ADMIN_SIGNUP_CODE")}

	cfg.Cache = CacheConfig{
		Enabled:       v.GetBool("ENABLE_CACHE"),
		ReportsTTL:    parseDuration(v.GetString("REPORTS_CACHE_TTL"), time.Minute),
		DashboardTTL:  parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		SuggestionTTL: parseDuration(v.GetString("SUGGESTION_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupSchedule:   v.GetString("EXPORTS_CLEANUP_SCHEDULE"),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("OUTBOUND_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "streetvoice")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "30m")
	v.SetDefault("JWT_ISSUER", "streetvoice")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("UPLOADS_PUBLIC_PATH", "/uploads")
	v.SetDefault("UPLOADS_MAX_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_JPEG_QUALITY", 70)
	v.SetDefault("UPLOADS_MAX_WIDTH", 800)

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo")

	v.SetDefault("OPENCAGE_API_KEY", "")
	v.SetDefault("OPENCAGE_URL", "https://api.opencagedata.com/geocode/v1/json")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash-001")
	v.SetDefault("GEMINI_URL", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("GEMINI_TEMPERATURE", 0.7)

	v.SetDefault("STATUS_TRANSITION_POLICY", TransitionPermissive)
	v.SetDefault("REPORTS_PAGE_SIZE", 20)
	v.SetDefault("REPORTS_MAX_PAGE_SIZE", 100)

	v.SetDefault("ADMIN_SIGNUP_CODE", "")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("REPORTS_CACHE_TTL", "1m")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("SUGGESTION_CACHE_TTL", "24h")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_SCHEDULE", "@hourly")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
}

func normalisePolicy(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), TransitionStrict) {
		return TransitionStrict
	}
	return TransitionPermissive
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
