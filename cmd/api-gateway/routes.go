package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/internal/handler"
	"github.com/noah-isme/center-cms-api/internal/middleware"
	"github.com/noah-isme/center-cms-api/internal/models"
	"github.com/noah-isme/center-cms-api/internal/service"
	"github.com/noah-isme/center-cms-api/pkg/config"
	"github.com/noah-isme/center-cms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/center-cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/center-cms-api/pkg/middleware/requestid"
)

type routeDeps struct {
	authorizer *middleware.Authorizer
	metrics    *service.MetricsService
	auth       *handler.AuthHandler
	assets     *handler.AssetHandler
	observe    *handler.MetricsHandler
	content    *service.ContentService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	fields := deps.authorizer.Fields()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, fields.KeyField, fields.TokenField))

	r.GET("/health", deps.observe.Health)
	r.GET("/ready", deps.observe.Ready)
	r.GET("/metrics", deps.observe.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.StaticFS(cfg.Assets.PublicPrefix, http.Dir(cfg.Assets.StorageDir))

	api := r.Group(cfg.APIPrefix)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RPS:      cfg.RateLimit.RPS,
			Burst:    cfg.RateLimit.Burst,
			IPRPS:    cfg.RateLimit.IPRPS,
			IPBurst:  cfg.RateLimit.IPBurst,
			IdleTTL:  cfg.RateLimit.IdleTTL,
			KeyField: fields.KeyField,
		})
		api.Use(limiter.Middleware())
	}

	registerRoutes(api, deps)
	return r
}

// registerRoutes mounts every API route. Each group names its full gate
// chain so the required credentials are visible at the mount point.
func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	a := deps.authorizer

	loginGate := a.Authorize(
		a.RequireKey(),
		a.RequireKeyClass(models.KeyClassInternal, models.KeyClassRoot),
	)
	publicGate := a.Authorize(
		a.RequireKey(),
		a.RequireKeyClass(models.KeyClassExternal, models.KeyClassInternal, models.KeyClassRoot),
	)
	staffGate := a.Authorize(
		a.RequireKey(),
		a.RequireKeyClass(models.KeyClassInternal),
		a.RequireToken(),
		a.RequireRole(models.RoleAdministrator, models.RoleStaff),
	)
	adminGate := a.Authorize(
		a.RequireKey(),
		a.RequireKeyClass(models.KeyClassInternal),
		a.RequireToken(),
		a.RequireRole(models.RoleAdministrator),
	)
	rootGate := a.Authorize(
		a.RequireKey(),
		a.RequireKeyClass(models.KeyClassRoot),
	)

	auth := api.Group("/auth")
	auth.POST("/login", loginGate, deps.auth.Login)
	auth.GET("/session", deps.auth.Session)

	api.POST("/admin/assets", staffGate, deps.assets.Upload)
	api.GET("/internal/metrics", rootGate, deps.observe.Snapshot)

	for _, kind := range models.ContentKinds {
		h := handler.NewContentHandler(deps.content, kind)
		path := "/" + string(kind)

		public := api.Group("/centers/:centerId"+path, publicGate)
		public.GET("", h.PublicList)
		public.GET("/:id", h.PublicGet)

		admin := api.Group("/admin"+path, staffGate)
		admin.GET("", h.AdminList)
		admin.GET("/export", h.Export)
		admin.GET("/:id", h.AdminGet)
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		api.DELETE("/admin"+path+"/:id/purge", adminGate, h.Purge)

		api.GET("/internal"+path+"/:id", rootGate, h.InternalGet)
	}
}
