package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RelationService manages one kind of user-to-recipe relation. Favorites
// and the shopping cart are two instances over the same table.
type RelationService struct {
	db         *gorm.DB
	kind       models.RelationKind
	errExists  error
	errMissing error
}

func NewRelationService(db *gorm.DB, kind models.RelationKind) *RelationService {
	s := &RelationService{db: db, kind: kind}
	switch kind {
	case models.RelationFavorite:
		s.errExists, s.errMissing = ErrAlreadyFavorited, ErrNotFavorited
	case models.RelationShoppingCart:
		s.errExists, s.errMissing = ErrAlreadyInCart, ErrNotInCart
	default:
		panic(fmt.Sprintf("unknown relation kind %q", kind))
	}
	return s
}

func NewFavoriteService(db *gorm.DB) *RelationService {
	return NewRelationService(db, models.RelationFavorite)
}

func NewShoppingCartService(db *gorm.DB) *RelationService {
	return NewRelationService(db, models.RelationShoppingCart)
}

// Add links the recipe to the user. The unique index is the only duplicate
// check, so two racing adds produce one row and one errExists.
func (s *RelationService) Add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	var summary types.RecipeSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, recipeID)
		if err != nil {
			return err
		}

		rel := models.RecipeRelation{Kind: s.kind, UserID: userID, RecipeID: recipeID}
		if err := tx.Create(&rel).Error; err != nil {
			if isUniqueViolation(err) {
				return s.errExists
			}
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to add %s: %w", s.kind, err)
		}

		summary = toRecipeSummary(recipe)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("component", "relations").
		Str("kind", string(s.kind)).
		Str("user_id", userID.String()).
		Str("recipe_id", recipeID.String()).
		Msg("Relation added")
	return &summary, nil
}

// Remove deletes the relation. Removing a missing relation is an error.
func (s *RelationService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRecipe(tx, recipeID); err != nil {
			return err
		}

		res := tx.Where("kind = ? AND user_id = ? AND recipe_id = ?", string(s.kind), userID, recipeID).
			Delete(&models.RecipeRelation{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove %s: %w", s.kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return s.errMissing
		}
		return nil
	})
}

// Contains reports which of recipeIDs the user has a relation of this kind with.
func (s *RelationService) Contains(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return found, nil
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.RecipeRelation{}).
		Where("kind = ? AND user_id = ? AND recipe_id IN ?", string(s.kind), userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s relations: %w", s.kind, err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func findRecipe(tx *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}
