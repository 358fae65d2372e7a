package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "import_catalog",
		Short:         "Load ingredients and tags into the catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIngredientsCmd(), newTagsCmd())
	return root
}

func newIngredientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingredients <file.json|file.yaml>",
		Short: "Import ingredients; existing (name, unit) pairs are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []models.Ingredient
			if err := readCatalogFile(args[0], &items); err != nil {
				return err
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			n, err := catalog.ImportIngredients(cmd.Context(), items)
			if err != nil {
				return err
			}
			log.Info().Int("read", len(items)).Int64("inserted", n).Msg("Ingredients imported")
			return nil
		},
	}
}

func newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <file.json|file.yaml>",
		Short: "Import tags; existing names, colors or slugs are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []models.Tag
			if err := readCatalogFile(args[0], &items); err != nil {
				return err
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			n, err := catalog.ImportTags(cmd.Context(), items)
			if err != nil {
				return err
			}
			log.Info().Int("read", len(items)).Int64("inserted", n).Msg("Tags imported")
			return nil
		},
	}
}

// readCatalogFile decodes a JSON or YAML list depending on the extension.
func readCatalogFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported file type %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func openCatalog() (*service.CatalogService, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	return service.NewCatalogService(db), nil
}

func openDB() (*gorm.DB, error) {
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.Environment == config.Production)
	return database.New(cfg)
}
