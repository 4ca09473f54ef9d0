package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/internal/handler"
	"github.com/noah-isme/center-cms-api/internal/middleware"
	"github.com/noah-isme/center-cms-api/internal/service"
	"github.com/noah-isme/center-cms-api/pkg/config"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:       config.EnvProduction,
		APIPrefix: "/api/v1",
		Assets:    config.AssetsConfig{StorageDir: t.TempDir(), PublicPrefix: "/assets"},
	}
	metrics := service.NewMetricsService()
	identity := service.NewIdentityResolver(nil, nil, nil, zap.NewNop())
	authorizer := middleware.NewAuthorizer(identity, middleware.CredentialConfig{}, metrics, zap.NewNop())

	return newRouter(cfg, zap.NewNop(), routeDeps{
		authorizer: authorizer,
		metrics:    metrics,
		auth:       handler.NewAuthHandler(nil, identity, authorizer.Fields()),
		assets:     handler.NewAssetHandler(nil),
		observe:    handler.NewMetricsHandler(metrics, nil),
		content:    service.NewContentService(service.ContentServiceDeps{}),
	})
}

func TestRoutesRequireKey(t *testing.T) {
	r := testRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodGet, "/api/v1/centers/c1/posts"},
		{http.MethodGet, "/api/v1/centers/c1/teams/t1"},
		{http.MethodGet, "/api/v1/admin/policies"},
		{http.MethodGet, "/api/v1/admin/journals/export"},
		{http.MethodDelete, "/api/v1/admin/galleries/g1/purge"},
		{http.MethodPost, "/api/v1/admin/assets"},
		{http.MethodGet, "/api/v1/internal/research/r1"},
		{http.MethodGet, "/api/v1/internal/metrics"},
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(tc.method, tc.path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), "MISSING_KEY", "%s %s", tc.method, tc.path)
	}
}

func TestRoutesOpenEndpoints(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"anonymous"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
