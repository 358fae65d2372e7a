package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var (
	tagColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	tagSlugPattern  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	likeEscaper     = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

const importBatchSize = 500

// CatalogService serves the read-only ingredient and tag reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	views := make([]types.TagView, len(tags))
	for i := range tags {
		views[i] = toTagView(&tags[i])
	}
	return views, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	view := toTagView(&tag)
	return &view, nil
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix returns the whole catalog.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`name_lower LIKE ? ESCAPE '\'`, likeEscaper.Replace(models.FoldName(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Order("name").Order("measurement_unit").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ing, nil
}

// ImportIngredients inserts the rows, skipping ones that already exist.
// Returns the number of rows inserted.
func (s *CatalogService) ImportIngredients(ctx context.Context, items []models.Ingredient) (int64, error) {
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		items[i].MeasurementUnit = strings.TrimSpace(items[i].MeasurementUnit)
		items[i].NameLower = models.FoldName(items[i].Name)
		err := validation.ValidateStruct(&items[i],
			validation.Field(&items[i].Name, validation.Required, validation.RuneLength(1, 200)),
			validation.Field(&items[i].MeasurementUnit, validation.Required, validation.RuneLength(1, 200)),
		)
		if err != nil {
			return 0, indexed("ingredients", i, fromValidation(err))
		}
	}
	return s.insertIgnoringDuplicates(ctx, &items, len(items))
}

func (s *CatalogService) ImportTags(ctx context.Context, items []models.Tag) (int64, error) {
	for i := range items {
		err := validation.ValidateStruct(&items[i],
			validation.Field(&items[i].Name, validation.Required, validation.RuneLength(1, 200)),
			validation.Field(&items[i].Color, validation.Required, validation.Match(tagColorPattern)),
			validation.Field(&items[i].Slug, validation.Required, validation.Match(tagSlugPattern)),
		)
		if err != nil {
			return 0, indexed("tags", i, fromValidation(err))
		}
	}
	return s.insertIgnoringDuplicates(ctx, &items, len(items))
}

func (s *CatalogService) insertIgnoringDuplicates(ctx context.Context, rows interface{}, n int) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, importBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import catalog: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func indexed(collection string, i int, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Field = fmt.Sprintf("%s[%d].%s", collection, i, ve.Field)
		return ve
	}
	return err
}
