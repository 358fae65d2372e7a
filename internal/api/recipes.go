package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	// maxRecipeBodyBytes fits a 5 MB image once base64 encoded, plus the
	// rest of the payload.
	maxRecipeBodyBytes = 8 << 20

	shoppingListFilename      = "shopping_list.txt"
	shoppingListLocalFilename = "Список_покупок.txt"
)

type RecipeHandler struct {
	recipes      service.IRecipeService
	favorites    service.IRelationService
	cart         service.IRelationService
	shoppingList service.IShoppingListService
	auth         middleware.TokenValidator
	createLimit  *middleware.RateLimiter
	pager        Pager
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	favorites, cart service.IRelationService,
	shoppingList service.IShoppingListService,
	auth middleware.TokenValidator,
	createLimit *middleware.RateLimiter,
	pager Pager,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		favorites:    favorites,
		cart:         cart,
		shoppingList: shoppingList,
		auth:         auth,
		createLimit:  createLimit,
		pager:        pager,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", required, h.createLimit.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", required, h.UpdateRecipe)
		recipes.DELETE("/:id", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite", required, h.addRelation(h.favorites))
		recipes.DELETE("/:id/favorite", required, h.removeRelation(h.favorites))
		recipes.POST("/:id/shopping_cart", required, h.addRelation(h.cart))
		recipes.DELETE("/:id/shopping_cart", required, h.removeRelation(h.cart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := types.RecipeFilter{
		TagSlugs:       c.QueryArray("tags"),
		Favorited:      queryBool(c, "is_favorited"),
		InShoppingCart: queryBool(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "author", "author must be a user id")
			return
		}
		filter.AuthorID = &authorID
	}

	page := h.pager.Parse(c)
	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), middleware.Viewer(c), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, page, total, recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := bindRecipeRequest(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	req, ok := bindRecipeRequest(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func bindRecipeRequest(c *gin.Context) (types.RecipeRequest, bool) {
	var req types.RecipeRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRecipeBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"errors": "request body too large"})
			return req, false
		}
		badRequest(c, "", "invalid request body")
		return req, false
	}
	return req, true
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "recipe")
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addRelation(rel service.IRelationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "recipe")
		if !ok {
			return
		}
		summary, err := rel.Add(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) removeRelation(rel service.IRelationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "recipe")
		if !ok {
			return
		}
		if err := rel.Remove(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lines, err := h.shoppingList.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s; filename*=UTF-8''%s",
		shoppingListFilename, url.PathEscape(shoppingListLocalFilename)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(strings.Join(lines, "\n")))
}
