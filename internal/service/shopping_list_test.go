package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestBuildShoppingList(t *testing.T) {
	k := newKitchen(t)
	recipes := service.NewRecipeService(k.db, noImages{})
	cart := service.NewShoppingCartService(k.db)
	list := service.NewShoppingListService(k.db)
	ctx := context.Background()

	first, err := recipes.CreateRecipe(ctx, k.author.ID,
		recipeRequest("Sponge", []uuid.UUID{k.breakfast.ID}, amount(k.flour, 200), amount(k.sugar, 100)))
	require.NoError(t, err)
	second, err := recipes.CreateRecipe(ctx, k.author.ID,
		recipeRequest("Crepes", []uuid.UUID{k.breakfast.ID}, amount(k.flour, 300), amount(k.egg, 2)))
	require.NoError(t, err)
	// Not in the cart, must not contribute.
	_, err = recipes.CreateRecipe(ctx, k.author.ID,
		recipeRequest("Meringue", []uuid.UUID{k.dinner.ID}, amount(k.sugar, 900)))
	require.NoError(t, err)

	_, err = cart.Add(ctx, k.other.ID, first.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, k.other.ID, second.ID)
	require.NoError(t, err)

	lines, err := list.BuildShoppingList(ctx, k.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Список продуктов: ",
		"Egg (pcs) - 2 ",
		"Flour (g) - 500 ",
		"Sugar (g) - 100 ",
	}, lines)
}

func TestShoppingListEmptyCart(t *testing.T) {
	k := newKitchen(t)
	lines, err := service.NewShoppingListService(k.db).BuildShoppingList(context.Background(), k.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{service.ShoppingListHeader}, lines)
}

func TestShoppingListGroupsByUnit(t *testing.T) {
	k := newKitchen(t)
	flourCups := testhelpers.CreateIngredient(t, k.db, "Flour", "cup")
	recipes := service.NewRecipeService(k.db, noImages{})
	cart := service.NewShoppingCartService(k.db)
	ctx := context.Background()

	r, err := recipes.CreateRecipe(ctx, k.author.ID,
		recipeRequest("Scones", []uuid.UUID{k.breakfast.ID}, amount(k.flour, 100), amount(flourCups, 2)))
	require.NoError(t, err)
	_, err = cart.Add(ctx, k.author.ID, r.ID)
	require.NoError(t, err)

	items, err := service.NewShoppingListService(k.db).Aggregate(ctx, k.author.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "Flour", MeasurementUnit: "cup", Amount: 2},
		{Name: "Flour", MeasurementUnit: "g", Amount: 100},
	}, items)
}

func TestRenderShoppingList(t *testing.T) {
	lines := service.RenderShoppingList([]types.ShoppingListItem{
		{Name: "Milk", MeasurementUnit: "ml", Amount: 750},
	})
	assert.Equal(t, []string{"Список продуктов: ", "Milk (ml) - 750 "}, lines)
}
