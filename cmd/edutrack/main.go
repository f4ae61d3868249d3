package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/controller"
	"github.com/edutrack-app/edutrack-bff/internal/gateway"
	"github.com/edutrack-app/edutrack-bff/internal/handler"
	"github.com/edutrack-app/edutrack-bff/internal/middleware"
	"github.com/edutrack-app/edutrack-bff/internal/repository"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
	"github.com/edutrack-app/edutrack-bff/internal/service"
	"github.com/edutrack-app/edutrack-bff/pkg/cache"
	"github.com/edutrack-app/edutrack-bff/pkg/config"
	"github.com/edutrack-app/edutrack-bff/pkg/database"
	"github.com/edutrack-app/edutrack-bff/pkg/logger"
	"github.com/edutrack-app/edutrack-bff/pkg/middleware/cors"
	"github.com/edutrack-app/edutrack-bff/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
			cacheRepo = repository.NewMemoryCacheRepository(cfg.Dashboard.CacheTTL, cfg.Sessions.CleanupInterval)
		} else {
			defer func() { _ = redisClient.Close() }()
			cacheRepo = repository.NewRedisCacheRepository(redisClient)
		}
	} else {
		cacheRepo = repository.NewMemoryCacheRepository(cfg.Dashboard.CacheTTL, cfg.Sessions.CleanupInterval)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, log)

	gw := gateway.NewClient(cfg.RecordHub, log,
		gateway.WithObserver(metricsSvc.ObserveGatewayCall))

	students := schema.Student()
	departments := schema.Department()

	registry := controller.NewRegistry(gw, []schema.Schema{students, departments},
		cfg.Sessions.IdleTTL, cfg.Sessions.CleanupInterval, log)

	dashboardSvc := service.NewDashboardService(gw, cacheSvc, log, service.DashboardServiceConfig{
		CacheTTL:    cfg.Dashboard.CacheTTL,
		SampleLimit: cfg.Dashboard.SampleLimit,
	})

	var auditRepo *repository.AuditRepository
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal("connect audit database", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		auditRepo = repository.NewAuditRepository(db)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Metrics(metricsSvc))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "entities": registry.Entities()})
	})
	router.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.Auth))

	auditFor := func(entity string) func(action string) gin.HandlerFunc {
		if auditRepo == nil {
			return nil
		}
		return func(action string) gin.HandlerFunc {
			return middleware.Audit(auditRepo, action, entity)
		}
	}
	mutatorGuard := middleware.RBAC(cfg.Auth.MutatorRoles...)

	studentHandler := handler.NewEntityHandler(students, registry, dashboardSvc, log)
	studentHandler.Register(api.Group("/students"), mutatorGuard, auditFor(students.Name))

	departmentHandler := handler.NewEntityHandler(departments, registry, dashboardSvc, log)
	departmentHandler.Register(api.Group("/departments"), mutatorGuard, auditFor(departments.Name))

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, log)
	dashboardHandler.Register(api.Group("/dashboard"))

	if auditRepo != nil {
		auditHandler := handler.NewAuditHandler(auditRepo, log)
		auditHandler.Register(api.Group("/audit"), mutatorGuard)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.Bool("audit", cfg.Audit.Enabled),
			zap.Bool("redis", cfg.Redis.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
