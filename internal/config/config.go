package config

import (
	"fmt"

	pkgconfig "github.com/jkstudio99/DropStockAPI/pkg/config"
)

const devSecurityKey = "change-this-to-a-secure-security-key"

// Config holds all configuration for the DropStock API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"dropstock"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"dropstock_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"dropstock_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT. Expiry must parse as an integer; a malformed value is a startup
	// failure, never a silent default.
	JWTSecurityKey   string `env:"JWT_SECURITY_KEY" envDefault:"change-this-to-a-secure-security-key"`
	JWTValidIssuer   string `env:"JWT_VALID_ISSUER" envDefault:"dropstock-api"`
	JWTValidAudience string `env:"JWT_VALID_AUDIENCE" envDefault:"dropstock-clients"`
	JWTExpiryMinutes int    `env:"JWT_EXPIRY_IN_MINUTES" envDefault:"60"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@dropstock.local"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"DropStock"`

	// Callback links embedded in outgoing mail
	ResetPasswordURL string `env:"RESET_PASSWORD_URL" envDefault:"http://localhost:3000/reset-password"`
	ConfirmEmailURL  string `env:"CONFIRM_EMAIL_URL" envDefault:"http://localhost:3000/confirm-email"`

	// Tracing
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSample    float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.JWTExpiryMinutes < 1 {
		return nil, fmt.Errorf("JWT_EXPIRY_IN_MINUTES must be positive, got %d", cfg.JWTExpiryMinutes)
	}

	// In non-development environments, require an explicitly set, strong signing key.
	if cfg.Environment != "development" {
		if cfg.JWTSecurityKey == devSecurityKey {
			return nil, fmt.Errorf("JWT_SECURITY_KEY must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecurityKey) < 32 {
			return nil, fmt.Errorf("JWT_SECURITY_KEY must be at least 32 characters long, got %d", len(cfg.JWTSecurityKey))
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
