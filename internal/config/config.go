package config

import (
	"slices"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CORS      CORSConfig      `yaml:"cors"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Claims    ClaimsConfig    `yaml:"claims"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// LoginRateLimit caps login attempts per client IP per minute.
	LoginRateLimit int `yaml:"login_rate_limit" env:"SERVER_LOGIN_RATE_LIMIT" env-default:"20"`
}

// CORSConfig holds Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"http://localhost:3000"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,PATCH,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"Content-Disposition,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"30s"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"claims"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"8h"`
	PasswordCost   int           `yaml:"password_cost"    env:"AUTH_PASSWORD_COST"    env-default:"12"`
}

// ClaimsConfig holds claim workflow parameters.
type ClaimsConfig struct {
	DefaultHourlyRate string `yaml:"default_hourly_rate" env:"CLAIMS_DEFAULT_HOURLY_RATE" env-default:"250"`
	MaxHoursPerClaim  int    `yaml:"max_hours_per_claim" env:"CLAIMS_MAX_HOURS"           env-default:"180"`
	MaxPeriodLength   int    `yaml:"max_period_length"   env:"CLAIMS_MAX_PERIOD_LENGTH"   env-default:"50"`
	MaxDescription    int    `yaml:"max_description"     env:"CLAIMS_MAX_DESCRIPTION"     env-default:"200"`
	MaxFeedbackLength int    `yaml:"max_feedback_length" env:"CLAIMS_MAX_FEEDBACK_LENGTH" env-default:"1000"`
}

// StorageConfig holds supporting-document blob store settings.
type StorageConfig struct {
	RootDir              string `yaml:"root_dir"           env:"STORAGE_ROOT_DIR"           env-default:"./uploads"`
	MaxDocumentBytes     int64  `yaml:"max_document_bytes" env:"STORAGE_MAX_DOCUMENT_BYTES" env-default:"104857600"`
	AllowedExtensionsRaw string `yaml:"allowed_extensions" env:"STORAGE_ALLOWED_EXTENSIONS" env-default:".pdf,.docx,.xlsx,.png"`

	// AllowedExtensions is parsed from AllowedExtensionsRaw during validation.
	AllowedExtensions []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// TelemetryConfig holds OpenTelemetry metric settings.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"         env:"OTEL_ENABLED"         env-default:"false"`
	ServiceName    string        `yaml:"service_name"    env:"OTEL_SERVICE_NAME"    env-default:"claims-backend"`
	ExportInterval time.Duration `yaml:"export_interval" env:"OTEL_EXPORT_INTERVAL" env-default:"30s"`
}

// IsExtensionAllowed reports whether ext (with leading dot, any case) is accepted.
func (s StorageConfig) IsExtensionAllowed(ext string) bool {
	return slices.Contains(s.AllowedExtensions, strings.ToLower(ext))
}
