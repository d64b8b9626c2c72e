package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/routevox/trip-planner/internal/location"
	"github.com/routevox/trip-planner/internal/routing"
	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/config"
	"github.com/routevox/trip-planner/pkg/errors"
	"github.com/routevox/trip-planner/pkg/logger"
	"github.com/routevox/trip-planner/pkg/middleware"
	redisClient "github.com/routevox/trip-planner/pkg/redis"
	"github.com/routevox/trip-planner/pkg/resilience"
	"go.uber.org/zap"
)

const (
	serviceName = "routes-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting routes service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.DefaultSentryConfig()
	sentryConfig.ServerName = serviceName
	sentryConfig.Release = version
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized successfully")
	}

	var cache redisClient.ClientInterface
	var redis *redisClient.Client
	if cfg.Redis.Enabled {
		redis, err = redisClient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		cache = redis
		logger.Info("Connected to Redis")
	} else {
		logger.Warn("Redis disabled, provider responses will not be cached")
	}

	if cfg.Maps.APIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, location resolution will not work")
	}

	sources := location.NewGoogleSources(
		cfg.Maps.APIKey,
		cfg.Maps.PlacesBaseURL,
		cfg.Maps.ValidationBaseURL,
		cfg.Maps.GeocodingBaseURL,
		cache,
	)
	sources.RegionBias = cfg.Maps.RegionBias
	sources.LanguageBias = cfg.Maps.LanguageBias

	router := routing.NewGoogleRouter(
		cfg.Maps.APIKey,
		cfg.Maps.DirectionsBaseURL,
		cfg.Maps.RoutesBaseURL,
		cfg.Maps.PreferRoutesAPI,
	)

	if cfg.Resilience.CircuitBreaker.Enabled {
		mapsCfg := cfg.Resilience.CircuitBreaker.SettingsFor("google-maps-api")
		sources.SetCircuitBreaker(resilience.NewCircuitBreaker(
			resilience.BuildSettings(fmt.Sprintf("%s-location", serviceName), mapsCfg.IntervalSeconds, mapsCfg.TimeoutSeconds, mapsCfg.FailureThreshold, mapsCfg.SuccessThreshold),
			resilience.GracefulDegradation("google-maps-api"),
		))

		routingCfg := cfg.Resilience.CircuitBreaker.SettingsFor("google-routing-api")
		router.SetCircuitBreaker(resilience.NewCircuitBreaker(
			resilience.BuildSettings(fmt.Sprintf("%s-routing", serviceName), routingCfg.IntervalSeconds, routingCfg.TimeoutSeconds, routingCfg.FailureThreshold, routingCfg.SuccessThreshold),
			resilience.GracefulDegradation("google-routing-api"),
		))
		logger.Info("Circuit breakers enabled for upstream APIs")
	}

	engine := location.NewEngine(sources, sources, sources)
	assembler := routing.NewAssembler(engine, router)

	locationHandler := location.NewHandler(engine, sources)
	routingHandler := routing.NewHandler(assembler)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(common.NoRouteHandler())
	r.NoMethod(common.NoMethodHandler())
	r.Use(middleware.RecoveryWithSentry())
	r.Use(middleware.SentryMiddleware())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(serviceName))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.Metrics(serviceName))
	r.Use(middleware.ErrorHandler())

	// Health check endpoints
	r.GET("/healthz", common.HealthCheck(serviceName, version))
	r.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := make(map[string]func() error)
	if redis != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redis.Ping(ctx).Err()
		}
	}
	r.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	locationHandler.RegisterRoutes(api)
	routingHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
