package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

// kitchen is a small catalog shared by the recipe tests.
type kitchen struct {
	db        *gorm.DB
	author    *models.User
	other     *models.User
	flour     *models.Ingredient
	sugar     *models.Ingredient
	egg       *models.Ingredient
	breakfast *models.Tag
	dinner    *models.Tag
}

func newKitchen(t *testing.T) *kitchen {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	return &kitchen{
		db:        db,
		author:    testhelpers.CreateUser(t, db, "chef"),
		other:     testhelpers.CreateUser(t, db, "guest"),
		flour:     testhelpers.CreateIngredient(t, db, "Flour", "g"),
		sugar:     testhelpers.CreateIngredient(t, db, "Sugar", "g"),
		egg:       testhelpers.CreateIngredient(t, db, "Egg", "pcs"),
		breakfast: testhelpers.CreateTag(t, db, "Breakfast", "#E26C2D", "breakfast"),
		dinner:    testhelpers.CreateTag(t, db, "Dinner", "#49B64E", "dinner"),
	}
}

func cookingTime(n int) *int { return &n }

func recipeRequest(name string, tags []uuid.UUID, ingredients ...types.IngredientAmount) types.RecipeRequest {
	return types.RecipeRequest{
		Name:        name,
		Text:        "Mix everything and bake.",
		CookingTime: cookingTime(30),
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func amount(ing *models.Ingredient, n int) types.IngredientAmount {
	return types.IngredientAmount{ID: ing.ID, Amount: n}
}

// noImages is an ImageStore for tests that never upload.
type noImages struct{}

func (noImages) Save(_ context.Context, dataURI string) (*service.StoredImage, error) {
	if dataURI != "" {
		return nil, errors.New("unexpected upload")
	}
	return nil, nil
}

func (noImages) Discard(context.Context, *service.StoredImage) {}

func requireValidation(t *testing.T, err error, code, field string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, service.ErrValidation)
	var ve *service.ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
	require.Equal(t, code, ve.Code)
	if field != "" {
		require.Equal(t, field, ve.Field)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
