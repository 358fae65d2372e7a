package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/service"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{&service.ValidationError{Code: service.CodeInvalidAmount, Field: "ingredients[0].amount", Message: "bad"}, http.StatusBadRequest},
		{service.ErrRecipeNotFound, http.StatusNotFound},
		{service.ErrNotFavorited, http.StatusNotFound},
		{service.ErrNotInCart, http.StatusNotFound},
		{service.ErrAlreadyFavorited, http.StatusBadRequest},
		{service.ErrAlreadyInCart, http.StatusBadRequest},
		{service.ErrSelfSubscription, http.StatusBadRequest},
		{service.ErrAlreadySubscribed, http.StatusBadRequest},
		{service.ErrNotSubscribed, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", service.ErrForbidden), http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}

func TestValidationErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondError(c, &service.ValidationError{Code: service.CodeDuplicateName, Field: "name", Message: "taken"})
	assert.JSONEq(t, `{"errors":"taken","field":"name","code":"duplicate_name"}`, w.Body.String())
}

func TestPagerParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pager := Pager{DefaultSize: 6, MaxSize: 50}

	cases := map[string][2]int{
		"/":                  {1, 6},
		"/?page=3&limit=10":  {3, 10},
		"/?page=0&limit=-1":  {1, 6},
		"/?page=x&limit=500": {1, 50},
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		got := pager.Parse(c)
		assert.Equal(t, want[0], got.Page, target)
		assert.Equal(t, want[1], got.Limit, target)
	}
}
