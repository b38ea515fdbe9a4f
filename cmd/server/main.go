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
	catalogapp "github.com/modelmart/backend/internal/application/catalog"
	identityapp "github.com/modelmart/backend/internal/application/identity"
	ledgerapp "github.com/modelmart/backend/internal/application/ledger"
	"github.com/modelmart/backend/internal/infrastructure/auth"
	"github.com/modelmart/backend/internal/infrastructure/cache"
	"github.com/modelmart/backend/internal/infrastructure/config"
	"github.com/modelmart/backend/internal/infrastructure/logger"
	"github.com/modelmart/backend/internal/infrastructure/persistence"
	"github.com/modelmart/backend/internal/infrastructure/storage"
	"github.com/modelmart/backend/internal/infrastructure/telemetry"
	"github.com/modelmart/backend/internal/interfaces/http/handler"
	"github.com/modelmart/backend/internal/interfaces/http/middleware"
	"github.com/modelmart/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/modelmart/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			ModelMart Backend API
//	@version		1.0
//	@description	AI model marketplace backend API built with DDD layering
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/modelmart/backend
//	@contact.email	support@modelmart.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewFromAppConfig(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ModelMart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled, so wiring is unconditional
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingEndpoint,
		ApplicationName:   cfg.App.Name,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without it", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Failed to stop profiler", zap.Error(err))
			}
		}()
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilingEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Initialize database connection with a zap-backed GORM logger
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	db.DB.Logger = logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracingCfg.WithoutVariables = !cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		tracingPlugin := telemetry.NewDBTracingPlugin(tracingCfg, log)
		if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Marketplace metrics with periodic catalog collection
	var marketMetrics *telemetry.MarketMetrics
	if cfg.Telemetry.Enabled {
		mm, err := telemetry.NewMarketMetrics(telemetry.MarketMetricsConfig{
			Meter:           meterProvider.Meter("modelmart/market"),
			Logger:          log,
			CatalogProvider: telemetry.NewGormCatalogMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize marketplace metrics", zap.Error(err))
		} else {
			marketMetrics = mm
			marketMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
			defer marketMetrics.Stop()
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	modelRepo := persistence.NewGormModelRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)

	// Token blacklist: Redis when reachable, in-memory otherwise. An
	// in-memory blacklist does not survive restarts or span replicas.
	var blacklist auth.TokenBlacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	cancelPing()

	// Entitlement cache for purchase-status lookups
	cacheFactory := cache.NewEntitlementCacheFactory(cfg.Redis, cache.WithLogger(log))
	entitlements, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create entitlement cache", zap.Error(err))
	}

	// Object storage for model cover images
	var objectStorage catalogapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("No storage bucket configured, image uploads will return errors")
		objectStorage = storage.NewStubObjectStorage()
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	modelService := catalogapp.NewModelService(modelRepo, userRepo, objectStorage, log)
	purchaseService := ledgerapp.NewPurchaseService(purchaseRepo, modelRepo, userRepo, log,
		ledgerapp.WithEntitlementCache(entitlements))
	if marketMetrics != nil {
		authService.SetMarketMetrics(marketMetrics)
		purchaseService.SetMarketMetrics(marketMetrics)
	}

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	modelHandler := handler.NewModelHandler(modelService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	systemHandler := handler.NewSystemHandler()

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("modelmart/http"), true))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", healthHandler(db))

	jwtMW := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})

	if cfg.Swagger.Enabled {
		swaggerGroup := engine.Group("/swagger")
		swaggerGroup.Use(middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMW))
		swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))

	// Session endpoints stay public. Everything under /auth that acts on
	// an established session requires a valid token.
	authGroup := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authGroup.Use(middleware.AuthRateLimit(authLimiter))
	}
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)

	accountGroup := router.NewDomainGroup("account", "/auth")
	accountGroup.Use(jwtMW)
	accountGroup.POST("/logout", authHandler.Logout)
	accountGroup.GET("/me", authHandler.GetCurrentUser)
	accountGroup.PUT("/profile", authHandler.UpdateProfile)
	accountGroup.PUT("/password", authHandler.ChangePassword)

	// Browsing the catalog is anonymous, publishing requires a developer token
	catalogGroup := router.NewDomainGroup("catalog", "/models")
	catalogGroup.GET("", modelHandler.List)
	catalogGroup.GET("/:id", modelHandler.Get)

	publishGroup := router.NewDomainGroup("publish", "/models")
	publishGroup.Use(jwtMW)
	publishGroup.POST("", modelHandler.Create)
	publishGroup.PUT("/:id", modelHandler.Update)
	publishGroup.DELETE("/:id", modelHandler.Delete)
	publishGroup.GET("/mine", modelHandler.ListMine)
	publishGroup.POST("/image-upload-url", modelHandler.ImageUploadURL)

	ledgerGroup := router.NewDomainGroup("ledger", "/purchases")
	ledgerGroup.Use(jwtMW)
	ledgerGroup.POST("", purchaseHandler.Record)
	ledgerGroup.GET("/status", purchaseHandler.Status)
	ledgerGroup.GET("/history", purchaseHandler.History)

	systemGroup := router.NewDomainGroup("system", "/system")
	systemGroup.GET("/ping", systemHandler.Ping)
	systemGroup.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authGroup).
		Register(accountGroup).
		Register(catalogGroup).
		Register(publishGroup).
		Register(ledgerGroup).
		Register(systemGroup)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// healthHandler reports liveness including database reachability.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
