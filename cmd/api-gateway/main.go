package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/center-cms-api/api/swagger"
	"github.com/noah-isme/center-cms-api/internal/handler"
	"github.com/noah-isme/center-cms-api/internal/middleware"
	"github.com/noah-isme/center-cms-api/internal/repository"
	"github.com/noah-isme/center-cms-api/internal/service"
	"github.com/noah-isme/center-cms-api/pkg/cache"
	"github.com/noah-isme/center-cms-api/pkg/config"
	"github.com/noah-isme/center-cms-api/pkg/database"
	"github.com/noah-isme/center-cms-api/pkg/export"
	"github.com/noah-isme/center-cms-api/pkg/jobs"
	"github.com/noah-isme/center-cms-api/pkg/logger"
	"github.com/noah-isme/center-cms-api/pkg/pagination"
	"github.com/noah-isme/center-cms-api/pkg/storage"
)

// @title Center CMS API
// @version 1.0.0
// @description Multi-tenant content API for learning centers
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @securityDefinitions.apikey AccessToken
// @in header
// @name x-access-token

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	if err := run(cfg, logr); err != nil {
		logr.Error("api gateway stopped", zap.Error(err))
		_ = logr.Sync()
		os.Exit(1)
	}
	_ = logr.Sync()
}

// run wires the gateway and blocks until a signal arrives or the server
// fails. Deferred cleanup runs on every return path.
func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database, logr); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)
	centerRepo := repository.NewCenterRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	contentRepo := repository.NewContentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "center-cms", logr)
	defer cacheRepo.Close() //nolint:errcheck

	tokens := service.NewTokenCodec(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	identity := service.NewIdentityResolver(keyRepo, userRepo, tokens, logr)
	validate := service.NewValidator()
	authService := service.NewAuthService(userRepo, auditRepo, tokens, validate, logr)
	constraints := service.NewConstraintService(contentRepo, centerRepo)
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	assetHost, err := storage.NewLocalAssetHost(cfg.Assets.StorageDir, cfg.Assets.PublicPrefix)
	if err != nil {
		return fmt.Errorf("prepare asset storage: %w", err)
	}
	assets := service.NewAssetCleanupService(assetHost, metrics, logr)
	cleanupQueue := jobs.NewQueue("asset-cleanup", assets.Handle, jobs.QueueConfig{
		Workers:    cfg.Assets.Workers,
		BufferSize: cfg.Assets.QueueBuffer,
		MaxRetries: cfg.Assets.MaxRetries,
		RetryDelay: cfg.Assets.RetryDelay,
		Logger:     logr,
		OnGiveUp:   assets.GiveUp,
	})
	assets.Attach(cleanupQueue)
	cleanupQueue.Start(ctx)
	defer cleanupQueue.Stop()

	contentService := service.NewContentService(service.ContentServiceDeps{
		Repo:        contentRepo,
		Constraints: constraints,
		Audit:       auditRepo,
		Assets:      assets,
		Cache:       cacheService,
		Paginator:   pagination.New(cfg.Pagination.DefaultLimit),
		Renderer:    export.NewRenderer(),
		Validator:   validate,
		Logger:      logr,
	})

	authorizer := middleware.NewAuthorizer(identity, middleware.CredentialConfig{
		KeyField:   cfg.Auth.KeyField,
		TokenField: cfg.Auth.TokenField,
	}, metrics, logr)

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	r := newRouter(cfg, logr, routeDeps{
		authorizer: authorizer,
		metrics:    metrics,
		auth:       handler.NewAuthHandler(authService, identity, authorizer.Fields()),
		assets:     handler.NewAssetHandler(assetHost),
		observe:    handler.NewMetricsHandler(metrics, checks),
		content:    contentService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, logr)
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
// A listen failure is returned instead of exiting so callers unwind normally.
func serve(ctx context.Context, srv *http.Server, logr *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}
