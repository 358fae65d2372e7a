package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/types"
)

// MockRecipeService is a mock implementation of the IRecipeService interface
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, actorID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	args := m.Called(ctx, actorID, recipeID)
	return args.Error(0)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeView, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeView, int64, error) {
	args := m.Called(ctx, viewer, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeView), args.Get(1).(int64), args.Error(2)
}

// MockRelationService is a mock implementation of the IRelationService interface
type MockRelationService struct {
	mock.Mock
}

func (m *MockRelationService) Add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeSummary), args.Error(1)
}

func (m *MockRelationService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

// MockShoppingListService is a mock implementation of the IShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
