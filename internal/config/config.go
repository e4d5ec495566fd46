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
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Extractor ExtractorConfig
	Verify    VerifyConfig
	Upload    UploadConfig
	CORS      CORSConfig
	Notify    NotifyConfig
}

// NotifyConfig holds verdict notification settings.
type NotifyConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
	FrontendURL string   `mapstructure:"frontend_url"`
}

// UploadConfig bounds what a single submission may contain.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxPhotos     int   `mapstructure:"max_photos"`
}

// MaxFileSizeBytes returns the per-file limit in bytes.
func (u *UploadConfig) MaxFileSizeBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// VerifyConfig holds the heuristic constants of the cross-validation rules.
type VerifyConfig struct {
	CrewHourTolerance           float64 `mapstructure:"crew_hour_tolerance"`
	MobilizationOverchargeRatio float64 `mapstructure:"mobilization_overcharge_ratio"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single LLM extraction provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds document extraction settings with multi-provider support.
type ExtractorConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`

	// Process-wide request budget across all providers.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`

	BreakerFailures    uint32        `mapstructure:"breaker_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (e *ExtractorConfig) PrimaryConfig() *ProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return &ProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		MaxRetries:   e.MaxRetries,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (e *ExtractorConfig) TertiaryConfig() *ProviderConfig {
	if e.Tertiary.Provider != "" {
		return &e.Tertiary
	}
	return nil
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
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds bearer token verification settings. Tokens are issued elsewhere.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SITECHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "sitecheck")
	v.SetDefault("db.password", "sitecheck_secret")
	v.SetDefault("db.name", "sitecheck_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "sitecheck")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "sitecheck-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.max_photos", 10)

	v.SetDefault("verify.crew_hour_tolerance", 1.0)
	v.SetDefault("verify.mobilization_overcharge_ratio", 0.66)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@sitecheck.dev")
	v.SetDefault("notify.from_name", "SiteCheck")
	v.SetDefault("notify.recipients", "")
	v.SetDefault("notify.frontend_url", "http://localhost:3000")

	// Extractor defaults (legacy flat)
	v.SetDefault("extractor.provider", "openai")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gpt-4o")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.requests_per_second", 5)
	v.SetDefault("extractor.burst", 10)
	v.SetDefault("extractor.breaker_failures", 5)
	v.SetDefault("extractor.breaker_open_timeout", "30s")

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("extractor."+tier+".provider", "")
		v.SetDefault("extractor."+tier+".api_key", "")
		v.SetDefault("extractor."+tier+".default_model", "")
		v.SetDefault("extractor."+tier+".max_retries", 2)
		v.SetDefault("extractor."+tier+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                          "SITECHECK_SERVER_PORT",
		"server.read_timeout":                  "SITECHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":                 "SITECHECK_SERVER_WRITE_TIMEOUT",
		"server.environment":                   "SITECHECK_SERVER_ENVIRONMENT",
		"db.host":                              "SITECHECK_DB_HOST",
		"db.port":                              "SITECHECK_DB_PORT",
		"db.user":                              "SITECHECK_DB_USER",
		"db.password":                          "SITECHECK_DB_PASSWORD",
		"db.name":                              "SITECHECK_DB_NAME",
		"db.sslmode":                           "SITECHECK_DB_SSLMODE",
		"db.max_open":                          "SITECHECK_DB_MAX_OPEN",
		"db.max_idle":                          "SITECHECK_DB_MAX_IDLE",
		"jwt.secret":                           "SITECHECK_JWT_SECRET",
		"jwt.issuer":                           "SITECHECK_JWT_ISSUER",
		"s3.region":                            "SITECHECK_S3_REGION",
		"s3.bucket":                            "SITECHECK_S3_BUCKET",
		"s3.endpoint":                          "SITECHECK_S3_ENDPOINT",
		"s3.access_key":                        "SITECHECK_S3_ACCESS_KEY",
		"s3.secret_key":                        "SITECHECK_S3_SECRET_KEY",
		"s3.presign_expiry":                    "SITECHECK_S3_PRESIGN_EXPIRY",
		"log.level":                            "SITECHECK_LOG_LEVEL",
		"log.format":                           "SITECHECK_LOG_FORMAT",
		"cors.allowed_origins":                 "SITECHECK_CORS_ALLOWED_ORIGINS",
		"upload.max_file_size_mb":              "SITECHECK_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_photos":                    "SITECHECK_UPLOAD_MAX_PHOTOS",
		"verify.crew_hour_tolerance":           "SITECHECK_VERIFY_CREW_HOUR_TOLERANCE",
		"verify.mobilization_overcharge_ratio": "SITECHECK_VERIFY_MOBILIZATION_OVERCHARGE_RATIO",
		"notify.provider":                      "SITECHECK_NOTIFY_PROVIDER",
		"notify.region":                        "SITECHECK_NOTIFY_REGION",
		"notify.from_address":                  "SITECHECK_NOTIFY_FROM_ADDRESS",
		"notify.from_name":                     "SITECHECK_NOTIFY_FROM_NAME",
		"notify.recipients":                    "SITECHECK_NOTIFY_RECIPIENTS",
		"notify.frontend_url":                  "SITECHECK_NOTIFY_FRONTEND_URL",
		"extractor.provider":                   "SITECHECK_EXTRACTOR_PROVIDER",
		"extractor.api_key":                    "SITECHECK_EXTRACTOR_API_KEY",
		"extractor.default_model":              "SITECHECK_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":                "SITECHECK_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":               "SITECHECK_EXTRACTOR_TIMEOUT_SECS",
		"extractor.requests_per_second":        "SITECHECK_EXTRACTOR_REQUESTS_PER_SECOND",
		"extractor.burst":                      "SITECHECK_EXTRACTOR_BURST",
		"extractor.breaker_failures":           "SITECHECK_EXTRACTOR_BREAKER_FAILURES",
		"extractor.breaker_open_timeout":       "SITECHECK_EXTRACTOR_BREAKER_OPEN_TIMEOUT",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs"} {
			key := "extractor." + tier + "." + field
			envBindings[key] = "SITECHECK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SITECHECK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SITECHECK_SERVER_PORT") == "" {
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
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MaxPhotos:     v.GetInt("upload.max_photos"),
	}
	cfg.Verify = VerifyConfig{
		CrewHourTolerance:           v.GetFloat64("verify.crew_hour_tolerance"),
		MobilizationOverchargeRatio: v.GetFloat64("verify.mobilization_overcharge_ratio"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		Recipients:  splitList(v.GetString("notify.recipients")),
		FrontendURL: v.GetString("notify.frontend_url"),
	}

	cfg.Extractor = ExtractorConfig{
		Provider:           v.GetString("extractor.provider"),
		APIKey:             v.GetString("extractor.api_key"),
		DefaultModel:       v.GetString("extractor.default_model"),
		MaxRetries:         v.GetInt("extractor.max_retries"),
		TimeoutSecs:        v.GetInt("extractor.timeout_secs"),
		Primary:            providerConfig(v, "primary"),
		Secondary:          providerConfig(v, "secondary"),
		Tertiary:           providerConfig(v, "tertiary"),
		RequestsPerSecond:  v.GetFloat64("extractor.requests_per_second"),
		Burst:              v.GetInt("extractor.burst"),
		BreakerFailures:    v.GetUint32("extractor.breaker_failures"),
		BreakerOpenTimeout: v.GetDuration("extractor.breaker_open_timeout"),
	}

	if cfg.Upload.MaxPhotos < 0 {
		return nil, fmt.Errorf("config: upload.max_photos must not be negative")
	}
	if cfg.Verify.CrewHourTolerance < 0 {
		return nil, fmt.Errorf("config: verify.crew_hour_tolerance must not be negative")
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ProviderConfig {
	prefix := "extractor." + tier + "."
	return ProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
