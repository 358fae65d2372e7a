package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	ServerHost string `env:"SERVER_HOST" env-default:"0.0.0.0"`

	// Database configuration
	DBDriver   string `env:"DB_DRIVER" env-default:"postgres"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"foodgram"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"foodgram.db"`

	// Redis configuration. Redis is optional; without it logout tokens are
	// not revoked and recipe creation is not rate limited.
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"24h"`

	// API behaviour
	PageSize           int      `env:"PAGE_SIZE" env-default:"6"`
	MaxPageSize        int      `env:"MAX_PAGE_SIZE" env-default:"100"`
	RecipeCreateLimit  int      `env:"RECIPE_CREATE_LIMIT" env-default:"30"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	LogLevel           string   `env:"LOG_LEVEL" env-default:"info"`

	Storage StorageConfig
}

// secretBindings maps Docker secret file names onto config fields.
func (c *Config) secretBindings() map[string]*string {
	return map[string]*string{
		"db_user":          &c.DBUser,
		"db_password":      &c.DBPassword,
		"db_host":          &c.DBHost,
		"db_name":          &c.DBName,
		"jwt_secret":       &c.JWTSecret,
		"redis_password":   &c.RedisPassword,
		"redis_url":        &c.RedisURL,
		"minio_access_key": &c.Storage.MinIOAccessKey,
		"minio_secret_key": &c.Storage.MinIOSecretKey,
	}
}

// LoadConfig reads the environment, overlays Docker secrets and validates the
// result for the current runtime environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.Environment = env

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test, Production:
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if cfg.JWTSecret == "" && (env == Development || env == Test) {
		cfg.JWTSecret = DevJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DevJWTSecret signs tokens when no secret is configured outside production.
const DevJWTSecret = "foodgram-dev-secret"

// loadCIConfig picks up the TEST_* secrets exported by the CI runner.
func loadCIConfig(cfg *Config) {
	if v := os.Getenv("TEST_DB_PASSWORD"); v != "" {
		cfg.DBPassword = v
	}
	if v := os.Getenv("TEST_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("TEST_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("TEST_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
}

// loadSecrets overrides fields with Docker secrets when the files exist.
func loadSecrets(cfg *Config) {
	for name, field := range cfg.secretBindings() {
		if v := readSecret(name); v != "" {
			*field = v
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// PostgresDSN builds the key/value connection string used by gorm and lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether any redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
