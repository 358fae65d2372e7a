package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. SQLite databases (tests and local
// runs) use gorm auto-migration; postgres uses the versioned SQL files.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		log.Debug().Msg("Using GORM auto-migration for SQLite")
		return db.AutoMigrate(models.AllModels()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return MigrateUp(ctx, sqlDB)
}

func newProvider(sqlDB *sql.DB) (*goose.Provider, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, dir)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// MigrateUp applies all pending postgres migrations.
func MigrateUp(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := newProvider(sqlDB)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("Applied migration")
	}
	if len(results) == 0 {
		log.Info().Msg("Schema is up to date")
	}
	return nil
}

// MigrateDown rolls back the most recent postgres migration.
func MigrateDown(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := newProvider(sqlDB)
	if err != nil {
		return err
	}
	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	log.Info().
		Int64("version", result.Source.Version).
		Str("file", result.Source.Path).
		Msg("Rolled back migration")
	return nil
}
