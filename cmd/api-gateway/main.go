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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/maintenance-tracker-api/api/swagger"
	"github.com/noah-isme/maintenance-tracker-api/internal/handler"
	"github.com/noah-isme/maintenance-tracker-api/internal/middleware"
	"github.com/noah-isme/maintenance-tracker-api/internal/models"
	"github.com/noah-isme/maintenance-tracker-api/internal/realtime"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/service"
	"github.com/noah-isme/maintenance-tracker-api/pkg/cache"
	"github.com/noah-isme/maintenance-tracker-api/pkg/config"
	"github.com/noah-isme/maintenance-tracker-api/pkg/jobs"
	"github.com/noah-isme/maintenance-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/maintenance-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/maintenance-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/maintenance-tracker-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Maintenance Tracker API
// @version 1.0.0
// @description Equipment registry, maintenance log, dashboards and table sessions.
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer storage.Close(backend) //nolint:errcheck

	validate := models.NewValidator()
	equipmentStore := repository.NewCollectionStore[models.Equipment](backend, repository.StoreOptions{
		Collection: service.CollectionEquipment,
		Document:   cfg.Store.EquipmentDocument,
		Serialize:  cfg.Store.SerializeWrites,
		Validator:  validate,
		Logger:     logr,
		Observer:   metrics,
	})
	maintenanceStore := repository.NewCollectionStore[models.MaintenanceRecord](backend, repository.StoreOptions{
		Collection: service.CollectionMaintenance,
		Document:   cfg.Store.MaintenanceDoc,
		Serialize:  cfg.Store.SerializeWrites,
		Validator:  validate,
		Logger:     logr,
		Observer:   metrics,
	})
	if cfg.Store.BootstrapEmpty {
		for _, document := range []string{equipmentStore.Document(), maintenanceStore.Document()} {
			created, err := storage.EnsureDocument(ctx, backend, document, []byte("[]"))
			if err != nil {
				logr.Fatal("failed to bootstrap document", zap.String("document", document), zap.Error(err))
			}
			if created {
				logr.Info("created empty document", zap.String("document", document))
			}
		}
	}
	if !cfg.Store.SerializeWrites {
		logr.Warn("store writes are not serialized; concurrent writers may lose updates")
	}

	var (
		cacheRepo  service.CacheRepository
		redisCheck handler.ReadinessCheck
	)
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			repo := repository.NewCacheRepository(client, "maintenance-tracker", logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			redisCheck = repo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.DefaultTTL, logr, cacheEnabled)

	feed := service.NewChangeFeed()
	equipmentSvc := service.NewEquipmentService(equipmentStore, validate, feed, logr)
	maintenanceSvc := service.NewMaintenanceService(maintenanceStore, equipmentStore, validate, feed, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Equipment:   equipmentStore,
		Maintenance: maintenanceStore,
		Cache:       cacheSvc,
		Logger:      logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			RecentLimit: cfg.Dashboard.RecentLimit,
		},
	})
	viewSvc := service.NewViewService(equipmentSvc, maintenanceSvc)
	exportSvc := service.NewExportService(equipmentSvc, maintenanceSvc, nil, nil, logr)
	tableSvc := service.NewTableSessionService(equipmentSvc, maintenanceSvc, metrics, service.TableSessionConfig{
		TTL:         cfg.Tables.SessionTTL,
		MaxSessions: cfg.Tables.MaxSessions,
	}, logr)

	purgeRetry := service.NewChangeDispatcher("dashboard-cache-purge", dashboardSvc.Invalidate, jobs.QueueConfig{Logger: logr})
	purgeRetry.Start(ctx)
	defer purgeRetry.Stop()
	dashboardSvc.RetryFailedPurges(purgeRetry)
	feed.Subscribe(dashboardSvc)
	feed.Subscribe(tableSvc)

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(corsmiddleware.OriginChecker(cfg.CORS.AllowedOrigins), metrics, logr)
		defer hub.Close()
		feed.Subscribe(hub)
	}

	var tokens middleware.TokenValidator
	if cfg.Auth.Enabled {
		if cfg.Auth.JWTSecret == "" {
			logr.Fatal("AUTH_ENABLED requires JWT_SECRET")
		}
		tokens = service.NewTokenService(cfg.Auth.JWTSecret)
	}

	checks := map[string]handler.ReadinessCheck{
		"store": func(ctx context.Context) error {
			_, err := equipmentStore.ReadAll(ctx)
			return err
		},
	}
	if redisCheck != nil {
		checks["redis"] = redisCheck
	}

	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc, viewSvc, exportSvc)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceSvc, viewSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	tableHandler := handler.NewTableHandler(tableSvc, validate)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	guard := middleware.JWT(tokens)

	equipment := api.Group("/equipment")
	equipment.GET("", equipmentHandler.List)
	equipment.GET("/view", equipmentHandler.View)
	equipment.GET("/export", equipmentHandler.Export)
	equipment.GET("/:id", equipmentHandler.Get)
	equipment.POST("", guard, equipmentHandler.Create)
	equipment.PUT("", guard, equipmentHandler.Update)

	maintenance := api.Group("/maintenance")
	maintenance.GET("", maintenanceHandler.List)
	maintenance.GET("/enriched", maintenanceHandler.Enriched)
	maintenance.GET("/view", maintenanceHandler.View)
	maintenance.GET("/export", maintenanceHandler.Export)
	maintenance.GET("/:id", maintenanceHandler.Get)
	maintenance.POST("", guard, maintenanceHandler.Create)
	maintenance.PUT("", guard, maintenanceHandler.Update)

	dashboard := api.Group("/dashboard")
	dashboard.GET("", dashboardHandler.Summary)
	dashboard.GET("/status-distribution", dashboardHandler.StatusDistribution)
	dashboard.GET("/hours-by-department", dashboardHandler.HoursByDepartment)

	tables := api.Group("/tables")
	tables.POST("/:table", tableHandler.Open)
	tables.GET("/:table", tableHandler.Get)
	tables.DELETE("/:table", tableHandler.Close)
	tables.PATCH("/:table/view", tableHandler.UpdateView)
	tables.POST("/:table/sort/:field", tableHandler.ToggleSort)
	tables.POST("/:table/groups/:key/toggle", tableHandler.ToggleGroup)
	tables.POST("/:table/refresh", tableHandler.Refresh)
	tables.POST("/:table/edit", tableHandler.BeginEdit)
	tables.PATCH("/:table/edit", tableHandler.SetEditValue)
	tables.DELETE("/:table/edit", tableHandler.CancelEdit)
	tables.POST("/:table/edit/save", guard, tableHandler.SaveEdit)

	if hub != nil {
		api.GET("/ws", handler.NewRealtimeHandler(hub, logr).Stream)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", string(backend.Driver())),
			zap.Bool("cache", cacheEnabled),
			zap.Bool("auth", cfg.Auth.Enabled),
			zap.Bool("realtime", hub != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
