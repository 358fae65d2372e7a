package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeHandlerDeps struct {
	recipes   *mocks.MockRecipeService
	favorites *mocks.MockRelationService
	cart      *mocks.MockRelationService
	list      *mocks.MockShoppingListService
	auth      *mocks.MockAuthService
	userID    uuid.UUID
	router    *gin.Engine
}

func newRecipeHandlerDeps(t *testing.T) *recipeHandlerDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := &recipeHandlerDeps{
		recipes:   new(mocks.MockRecipeService),
		favorites: new(mocks.MockRelationService),
		cart:      new(mocks.MockRelationService),
		list:      new(mocks.MockShoppingListService),
		auth:      new(mocks.MockAuthService),
		userID:    uuid.New(),
	}
	d.auth.On("ValidateToken", mock.Anything, "valid-token").
		Return(&types.TokenClaims{UserID: d.userID, Username: "cook"}, nil)

	h := api.NewRecipeHandler(d.recipes, d.favorites, d.cart, d.list, d.auth, nil,
		api.Pager{DefaultSize: 6, MaxSize: 100})
	d.router = gin.New()
	h.RegisterRoutes(d.router.Group("/api"))
	return d
}

func (d *recipeHandlerDeps) serve(method, path string, authed bool) *httptest.ResponseRecorder {
	return d.serveBody(method, path, authed, nil)
}

func (d *recipeHandlerDeps) serveBody(method, path string, authed bool, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Token valid-token")
	}
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)
	return w
}

func TestRelationEndpointsMapServiceErrors(t *testing.T) {
	d := newRecipeHandlerDeps(t)
	recipeID := uuid.New()
	boom := errors.New("connection reset")

	d.favorites.On("Add", mock.Anything, d.userID, recipeID).Return(nil, service.ErrAlreadyFavorited).Once()
	d.favorites.On("Remove", mock.Anything, d.userID, recipeID).Return(service.ErrRecipeNotFound).Once()
	d.cart.On("Add", mock.Anything, d.userID, recipeID).Return(nil, boom).Once()
	d.cart.On("Remove", mock.Anything, d.userID, recipeID).Return(service.ErrNotInCart).Once()

	tests := []struct {
		method string
		rel    string
		status int
	}{
		{http.MethodPost, "favorite", http.StatusBadRequest},
		{http.MethodDelete, "favorite", http.StatusNotFound},
		{http.MethodPost, "shopping_cart", http.StatusInternalServerError},
		{http.MethodDelete, "shopping_cart", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.rel, func(t *testing.T) {
			w := d.serve(tt.method, "/api/recipes/"+recipeID.String()+"/"+tt.rel, true)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"errors"`)
		})
	}

	d.favorites.AssertExpectations(t)
	d.cart.AssertExpectations(t)
}

func TestRelationEndpointsRequireAuth(t *testing.T) {
	d := newRecipeHandlerDeps(t)

	w := d.serve(http.MethodPost, "/api/recipes/"+uuid.NewString()+"/favorite", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	d.favorites.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadShoppingCartServiceFailure(t *testing.T) {
	d := newRecipeHandlerDeps(t)
	d.list.On("BuildShoppingList", mock.Anything, d.userID).Return(nil, context.DeadlineExceeded).Once()

	w := d.serve(http.MethodGet, "/api/recipes/download_shopping_cart", true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	d.list.AssertExpectations(t)
}

func TestListRecipesPassesFilterAndClampsPage(t *testing.T) {
	d := newRecipeHandlerDeps(t)

	filter := types.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}, Favorited: true}
	lastPage := types.PageRequest{Page: types.MaxPage(6), Limit: 6}
	d.recipes.On("ListRecipes", mock.Anything, mock.Anything, filter, lastPage).
		Return([]types.RecipeView{}, int64(3), nil).Once()

	w := d.serve(http.MethodGet, "/api/recipes?tags=breakfast&tags=dinner&is_favorited=1&page=9223372036854775807", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[types.PaginatedResponse[types.RecipeView]](t, w)
	assert.Equal(t, int64(3), body.Count)
	assert.Empty(t, body.Results)
	assert.Nil(t, body.Next)
	require.NotNil(t, body.Previous)
	assert.Contains(t, *body.Previous, "page=")
	d.recipes.AssertExpectations(t)
}

func TestRecipeWriteRejectsOversizedBody(t *testing.T) {
	d := newRecipeHandlerDeps(t)
	body := `{"name":"Pie","image":"data:image/png;base64,` + strings.Repeat("A", 9<<20) + `"}`

	w := d.serveBody(http.MethodPost, "/api/recipes", true, strings.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = d.serveBody(http.MethodPatch, "/api/recipes/"+uuid.NewString(), true, strings.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	d.recipes.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything, mock.Anything)
	d.recipes.AssertNotCalled(t, "UpdateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
