package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/oneday-labs/intake-api/api/swagger"
	"github.com/oneday-labs/intake-api/internal/handler"
	"github.com/oneday-labs/intake-api/internal/middleware"
	"github.com/oneday-labs/intake-api/internal/repository"
	"github.com/oneday-labs/intake-api/internal/service"
	"github.com/oneday-labs/intake-api/pkg/cache"
	"github.com/oneday-labs/intake-api/pkg/config"
	"github.com/oneday-labs/intake-api/pkg/database"
	"github.com/oneday-labs/intake-api/pkg/logger"
	corsmiddleware "github.com/oneday-labs/intake-api/pkg/middleware/cors"
	reqidmiddleware "github.com/oneday-labs/intake-api/pkg/middleware/requestid"
	"github.com/oneday-labs/intake-api/pkg/storage"
	"github.com/oneday-labs/intake-api/web"
)

// @title Intake API
// @version 1.0.0
// @description Dynamic registration form with object, tabular and document sinks
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	mongoClient, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, running without cache", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr)

	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	var objectStore storage.ObjectStorage
	var localStore *storage.LocalStorage
	switch cfg.Storage.Driver {
	case config.StorageDriverMinio:
		objectStore, err = storage.NewMinioStorage(cfg.Storage)
		if err != nil {
			logr.Fatal("failed to init minio storage", zap.Error(err))
		}
	default:
		localStore, err = storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL, signer)
		if err != nil {
			logr.Fatal("failed to init local storage", zap.Error(err))
		}
		objectStore = localStore
	}

	schemaRepo := repository.NewSchemaRepository(db, cfg.Schema.Table)
	logRepo := repository.NewEntryLogRepository(db, cfg.Submissions.LogTable)
	docRepo := repository.NewDocumentRepository(mongoClient, cfg.Mongo.Database, cfg.Mongo.Collection)

	schemaSvc := service.NewSchemaService(schemaRepo, cacheSvc, cfg.Schema.CacheTTL, logr)
	submissionSvc := service.NewSubmissionService(schemaSvc, objectStore, logRepo, docRepo, cacheSvc, metricsSvc, service.SubmissionOptions{
		MaxFileSize:      cfg.Upload.MaxFileSizeBytes,
		AllowedFileTypes: cfg.Upload.AllowedTypes,
		StrictValidation: cfg.Submissions.StrictValidation,
		IdempotencyTTL:   cfg.Submissions.IdempotencyTTL,
		LogTable:         cfg.Submissions.LogTable,
	}, logr)
	authSvc := service.NewAuthService(cfg, logr)
	exportSvc := service.NewExportService(logRepo, schemaSvc, logr)

	formHandler := handler.NewFormHandler(schemaSvc, submissionSvc, cfg.Upload.MaxFileSizeBytes, logr)
	pageHandler, err := handler.NewPageHandler(schemaSvc, logr)
	if err != nil {
		logr.Fatal("failed to init page handler", zap.Error(err))
	}
	authHandler := handler.NewAuthHandler(authSvc)
	adminHandler := handler.NewAdminHandler(logRepo, schemaSvc, exportSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	root := r.Group(cfg.APIPrefix)

	root.GET("/", pageHandler.Index)
	root.GET("/success", pageHandler.Success)
	root.GET("/get_form_fields", formHandler.GetFormFields)
	root.POST("/submit_form", formHandler.SubmitForm)

	staticFS, err := staticSubFS()
	if err != nil {
		logr.Fatal("failed to mount static assets", zap.Error(err))
	}
	root.StaticFS("/static", staticFS)

	if localStore != nil {
		uploadHandler := handler.NewUploadHandler(localStore, signer, logr)
		root.GET("/uploads/:name", uploadHandler.Download)
	}

	root.POST("/auth/login", authHandler.Login)

	admin := root.Group("/admin", middleware.JWT(authSvc))
	{
		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.GET("/submissions/export", adminHandler.ExportSubmissions)
		admin.PUT("/form_fields", adminHandler.ReplaceFormFields)
	}

	root.GET("/health", metricsHandler.Health)
	root.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	root.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		root.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage_driver", cfg.Storage.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func staticSubFS() (http.FileSystem, error) {
	sub, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
