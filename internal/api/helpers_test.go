package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type testApp struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	cfg := &config.Config{
		Environment:        config.Test,
		ServerHost:         "localhost",
		ServerPort:         "8080",
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		PageSize:           6,
		MaxPageSize:        100,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	return &testApp{t: t, db: db, handler: server.New(cfg, db, nil, nil).Handler()}
}

// do performs a request; body is JSON-encoded when non-nil.
func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns its id and a token.
func (a *testApp) signup(username string) (string, string) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/users", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[map[string]interface{}](a.t, w)

	w = a.do(http.MethodPost, "/api/auth/token/login", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]string](a.t, w)["auth_token"]
	require.NotEmpty(a.t, token)
	return user["id"].(string), token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
