package service

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ImageStore saves recipe image payloads.
type ImageStore interface {
	Save(ctx context.Context, dataURI string) (*StoredImage, error)
	Discard(ctx context.Context, img *StoredImage)
}

// RecipeService composes recipes from catalog ingredients and tags and
// serves them with per-viewer flags.
type RecipeService struct {
	db        *gorm.DB
	images    ImageStore
	favorites *RelationService
	cart      *RelationService
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		favorites: NewFavoriteService(db),
		cart:      NewShoppingCartService(db),
	}
}

// CreateRecipe validates the payload and writes the recipe, its tags and
// its composition rows in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error) {
	if err := validateRecipeRequest(&req); err != nil {
		return nil, err
	}

	img, err := s.images.Save(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: *req.CookingTime,
	}
	if img != nil {
		recipe.Image = img.URL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveComposition(tx, &req)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return translateRecipeWriteError(err)
		}
		return writeComposition(tx, recipe.ID, tags, req.Ingredients)
	})
	if err != nil {
		s.images.Discard(ctx, img)
		return nil, err
	}

	log.Info().
		Str("component", "recipes").
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", authorID.String()).
		Int("ingredients", len(req.Ingredients)).
		Msg("Recipe created")
	return s.GetRecipe(ctx, &authorID, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields, tag set and composition rows.
// Only the author may update; an empty image keeps the current one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error) {
	if err := s.authorize(ctx, actorID, recipeID); err != nil {
		return nil, err
	}
	if err := validateRecipeRequest(&req); err != nil {
		return nil, err
	}

	img, err := s.images.Save(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"text":         req.Text,
		"cooking_time": *req.CookingTime,
	}
	if img != nil {
		updates["image"] = img.URL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveComposition(tx, &req)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Recipe{}).
			Where("id = ? AND author_id = ?", recipeID, actorID).
			Updates(updates)
		if res.Error != nil {
			return translateRecipeWriteError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return writeComposition(tx, recipeID, tags, req.Ingredients)
	})
	if err != nil {
		s.images.Discard(ctx, img)
		return nil, err
	}

	return s.GetRecipe(ctx, &actorID, recipeID)
}

// DeleteRecipe removes the recipe with its tag links, composition rows and
// every favorite and cart relation pointing at it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	if err := s.authorize(ctx, actorID, recipeID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe := models.Recipe{ID: recipeID}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete composition: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeRelation{}).Error; err != nil {
			return fmt.Errorf("failed to delete relations: %w", err)
		}
		res := tx.Delete(&models.Recipe{}, "id = ?", recipeID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
}

// GetRecipe loads one recipe. viewer is nil for anonymous requests.
func (s *RecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeView, error) {
	var recipe models.Recipe
	err := withRecipeAssociations(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	views, err := s.toViews(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeView, int64, error) {
	q, err := s.filteredQuery(ctx, viewer, filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err = withRecipeAssociations(q).
		Order("recipes.pub_date DESC").
		Order("recipes.name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := s.toViews(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) filteredQuery(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		sub, args, err := sq.Select("rt.recipe_id").
			From("recipe_tags rt").
			Join("tags t ON t.id = rt.tag_id").
			Where(sq.Eq{"t.slug": filter.TagSlugs}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build tag filter: %w", err)
		}
		q = q.Where("recipes.id IN ("+sub+")", args...)
	}

	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	if viewer != nil {
		for kind, enabled := range map[models.RelationKind]bool{
			models.RelationFavorite:     filter.Favorited,
			models.RelationShoppingCart: filter.InShoppingCart,
		} {
			if !enabled {
				continue
			}
			sub, args, err := sq.Select("rr.recipe_id").
				From("recipe_relations rr").
				Where(sq.Eq{"rr.kind": string(kind), "rr.user_id": viewer.String()}).
				ToSql()
			if err != nil {
				return nil, fmt.Errorf("failed to build relation filter: %w", err)
			}
			q = q.Where("recipes.id IN ("+sub+")", args...)
		}
	}

	return q.Session(&gorm.Session{}), nil
}

func (s *RecipeService) authorize(ctx context.Context, actorID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != actorID {
		return fmt.Errorf("only the author may change this recipe: %w", ErrForbidden)
	}
	return nil
}

func (s *RecipeService) toViews(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeView, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, inCart := map[uuid.UUID]bool{}, map[uuid.UUID]bool{}
	if viewer != nil {
		var err error
		if favorited, err = s.favorites.Contains(ctx, *viewer, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.cart.Contains(ctx, *viewer, recipeIDs); err != nil {
			return nil, err
		}
	}
	followed, err := subscribedAuthors(ctx, s.db, viewer, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		view := types.RecipeView{
			ID:               r.ID,
			Author:           toUserView(&r.Author, followed[r.AuthorID]),
			Tags:             make([]types.TagView, len(r.Tags)),
			Ingredients:      make([]types.RecipeIngredientView, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		}
		for j := range r.Tags {
			view.Tags[j] = toTagView(&r.Tags[j])
		}
		for j, ri := range r.Ingredients {
			view.Ingredients[j] = types.RecipeIngredientView{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		views[i] = view
	}
	return views, nil
}

func withRecipeAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.position") }).
		Preload("Ingredients.Ingredient")
}

// resolveComposition checks that every ingredient and tag id exists and
// returns the tags in request order.
func resolveComposition(tx *gorm.DB, req *types.RecipeRequest) ([]models.Tag, error) {
	ingredientIDs := make([]uuid.UUID, len(req.Ingredients))
	for i, entry := range req.Ingredients {
		ingredientIDs[i] = entry.ID
	}

	var known []uuid.UUID
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Pluck("id", &known).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve ingredients: %w", err)
	}
	knownSet := make(map[uuid.UUID]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}
	for i, entry := range req.Ingredients {
		if !knownSet[entry.ID] {
			return nil, newValidationError(CodeUnknownIngredient, fmt.Sprintf("ingredients[%d].id", i), fmt.Sprintf("ingredient %s does not exist", entry.ID))
		}
	}

	var found []models.Tag
	if err := tx.Where("id IN ?", req.Tags).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	byID := make(map[uuid.UUID]models.Tag, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tags := make([]models.Tag, len(req.Tags))
	for i, id := range req.Tags {
		t, ok := byID[id]
		if !ok {
			return nil, newValidationError(CodeUnknownTag, fmt.Sprintf("tags[%d]", i), fmt.Sprintf("tag %s does not exist", id))
		}
		tags[i] = t
	}
	return tags, nil
}

// writeComposition swaps the tag set and rebuilds the composition rows.
func writeComposition(tx *gorm.DB, recipeID uuid.UUID, tags []models.Tag, entries []types.IngredientAmount) error {
	recipe := models.Recipe{ID: recipeID}
	if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear composition: %w", err)
	}

	rows := make([]models.RecipeIngredient, len(entries))
	for i, entry := range entries {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: entry.ID,
			Amount:       entry.Amount,
			Position:     i,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return newValidationError(CodeDuplicateIngredient, "ingredients", "ingredient is listed more than once")
		}
		if isCheckViolation(err) {
			return newValidationError(CodeInvalidAmount, "ingredients", "amount must be a positive integer")
		}
		return fmt.Errorf("failed to write composition: %w", err)
	}
	return nil
}

func translateRecipeWriteError(err error) error {
	switch {
	case uniqueViolationOn(err, "idx_recipes_author_name", "recipes.author_id", "recipes.name"):
		return newValidationError(CodeDuplicateName, "name", "you already have a recipe with this name")
	case isCheckViolation(err):
		return newValidationError(CodeInvalidCookingTime, "cooking_time", "cooking time must be at least 1 minute")
	case isForeignKeyViolation(err):
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to write recipe: %w", err)
}
