package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errors []string

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errors = append(errors, ValidationError{"DB_HOST", "is required for postgres"}.Error())
		}
		if cfg.DBName == "" {
			errors = append(errors, ValidationError{"DB_NAME", "is required for postgres"}.Error())
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errors = append(errors, ValidationError{"SQLITE_PATH", "is required for sqlite"}.Error())
		}
		if cfg.Environment == Production {
			errors = append(errors, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"}.Error())
		}
	default:
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{"JWT_SECRET", "is required"}.Error())
	} else if cfg.Environment == Production && cfg.JWTSecret == DevJWTSecret {
		errors = append(errors, ValidationError{"JWT_SECRET", "development secret used in production"}.Error())
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, ValidationError{"JWT_TTL", "must be positive"}.Error())
	}

	if cfg.Environment == Production || cfg.Environment == CI {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errors = append(errors, ValidationError{"DB_PASSWORD", "is required"}.Error())
		}
	}

	if cfg.PageSize < 1 {
		errors = append(errors, ValidationError{"PAGE_SIZE", "must be at least 1"}.Error())
	}
	if cfg.MaxPageSize < cfg.PageSize {
		errors = append(errors, ValidationError{"MAX_PAGE_SIZE", "must not be smaller than PAGE_SIZE"}.Error())
	}

	switch cfg.Storage.Driver {
	case BlobDriverNone, BlobDriverS3:
	case BlobDriverMinIO:
		if cfg.Storage.MinIOAccessKey == "" || cfg.Storage.MinIOSecretKey == "" {
			errors = append(errors, ValidationError{"MINIO_ACCESS_KEY", "minio credentials are required"}.Error())
		}
	default:
		errors = append(errors, ValidationError{"BLOB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.Storage.Driver)}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
