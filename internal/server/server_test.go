package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "localhost",
		ServerPort:         "8080",
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		PageSize:           6,
		MaxPageSize:        100,
		RecipeCreateLimit:  30,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
}

func TestNew(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	srv := New(testConfig(), db, nil, nil)
	require.NotNil(t, srv)
	assert.Equal(t, "localhost:8080", srv.http.Addr)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	srv := New(testConfig(), db, nil, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `foodgram_http_requests_total{method="GET",route="/api/tags",status="200"} 1`))
}

func TestCORSPreflight(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	srv := New(testConfig(), db, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
