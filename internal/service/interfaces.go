package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for token operations
type IAuthService interface {
	Login(ctx context.Context, req types.LoginRequest) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserView, error)
	GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserView, error)
	ListUsers(ctx context.Context, viewer *uuid.UUID, page types.PageRequest) ([]types.UserView, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, req types.SetPasswordRequest) error
}

// ICatalogService defines the interface for tag and ingredient lookups
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagView, error)
	GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error)
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error)
	UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req types.RecipeRequest) (*types.RecipeView, error)
	DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error
	GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeView, error)
	ListRecipes(ctx context.Context, viewer *uuid.UUID, filter types.RecipeFilter, page types.PageRequest) ([]types.RecipeView, int64, error)
}

// IRelationService defines the interface for favorites and the shopping cart
type IRelationService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IShoppingListService defines the interface for shopping list export
type IShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// ISubscriptionService defines the interface for author subscriptions
type ISubscriptionService interface {
	Subscribe(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error)
	Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error
	GetSubscription(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error)
	ListSubscriptions(ctx context.Context, followerID uuid.UUID, page types.PageRequest, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRelationService     = (*RelationService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ ImageStore           = (*ImageService)(nil)
)
