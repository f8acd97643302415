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
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/internal/crosswalk"
	"github.com/waypace/walk-eta/internal/elevation"
	"github.com/waypace/walk-eta/internal/routeanalysis"
	"github.com/waypace/walk-eta/internal/speedprofile"
	"github.com/waypace/walk-eta/internal/triplog"
	"github.com/waypace/walk-eta/internal/weather"
	"github.com/waypace/walk-eta/pkg/common"
	"github.com/waypace/walk-eta/pkg/config"
	"github.com/waypace/walk-eta/pkg/database"
	"github.com/waypace/walk-eta/pkg/errors"
	"github.com/waypace/walk-eta/pkg/eventbus"
	"github.com/waypace/walk-eta/pkg/logger"
	"github.com/waypace/walk-eta/pkg/middleware"
	redisclient "github.com/waypace/walk-eta/pkg/redis"
	"github.com/waypace/walk-eta/pkg/resilience"
)

const (
	serviceName = "walk-eta-api"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(serviceName, cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting walk ETA service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if err := errors.InitSentry(cfg); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else if cfg.Sentry.Enabled {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized")
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, weather responses will not be cached", zap.Error(err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
	}

	// Event bus: NATS JetStream when enabled, in-process otherwise. The
	// speed profile recalibration subscriber hangs off trips.completed.
	var publisher eventbus.Publisher
	var natsBus *eventbus.Bus
	var localBus *eventbus.LocalBus
	if cfg.NATS.Enabled {
		natsBus, err = eventbus.New(eventbus.Config{
			URL:        cfg.NATS.URL,
			Name:       serviceName,
			StreamName: "WALKETA",
		})
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsBus.Close()
		publisher = natsBus
	} else {
		localBus = eventbus.NewLocalBus()
		publisher = localBus
		logger.Info("NATS disabled, using in-process event bus")
	}

	routeBreaker := newBreaker(cfg, "route-provider")
	elevationBreaker := newBreaker(cfg, "elevation-provider")
	weatherBreaker := newBreaker(cfg, "weather-provider")

	routeProvider := routeanalysis.NewTransitRouteProvider(cfg.Providers.Route, routeBreaker)
	elevationProvider := elevation.NewOpenElevationProvider(cfg.Providers.Elevation, elevationBreaker)
	weatherProvider := weather.NewKMAProvider(cfg.Providers.Weather, weatherBreaker)

	var weatherCache redisclient.ClientInterface
	if redisClient != nil {
		weatherCache = redisClient
	}
	weatherService := weather.NewService(weatherProvider, weatherCache, cfg.Providers.Weather.CacheTTL())
	elevationService := elevation.NewService(elevationProvider)

	crossings := crosswalk.NewService()
	crossingRepo := crosswalk.NewRepository(db)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := crossingRepo.SeedFromCSV(seedCtx, cfg.Providers.CrossingsCSV); err != nil {
		logger.Warn("Failed to seed crossing data", zap.Error(err))
	}
	if err := crossings.Load(seedCtx, crossingRepo); err != nil {
		logger.Warn("Failed to load crossing index, continuing without crossing waits", zap.Error(err))
	} else {
		logger.Info("Crossing index loaded", zap.Int("crossings", crossings.Count()))
	}
	cancelSeed()

	profileService := speedprofile.NewService(speedprofile.NewRepository(db), publisher)
	tripService := triplog.NewService(triplog.NewRepository(db), publisher)
	analysisService := routeanalysis.NewService(routeProvider, elevationService, weatherService, crossings)

	recalibrator := speedprofile.NewRecalibrator(profileService)
	if natsBus != nil {
		subCtx := context.Background()
		if err := natsBus.Subscribe(subCtx, eventbus.SubjectTripCompleted, "speedprofile-recalibrator", recalibrator.Handle); err != nil {
			logger.Fatal("Failed to subscribe profile recalibrator", zap.Error(err))
		}
	} else {
		localBus.Subscribe(eventbus.SubjectTripCompleted, recalibrator.Handle)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(30 * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.ErrorHandler())

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := make(map[string]func() error)
	healthChecks["database"] = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ping(ctx)
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	routeanalysis.NewHandler(analysisService).RegisterRoutes(v1)
	speedprofile.NewHandler(profileService).RegisterRoutes(v1)
	triplog.NewHandler(tripService).RegisterRoutes(v1)
	weather.NewHandler(weatherService).RegisterRoutes(v1)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
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

// newBreaker builds a circuit breaker for a provider, or nil when breakers
// are disabled.
func newBreaker(cfg *config.Config, name string) *resilience.CircuitBreaker {
	if !cfg.Resilience.CircuitBreaker.Enabled {
		return nil
	}
	settings := cfg.Resilience.CircuitBreaker.SettingsFor(name)
	return resilience.NewCircuitBreaker(resilience.Settings{
		Name:             name,
		Interval:         time.Duration(settings.IntervalSeconds) * time.Second,
		Timeout:          time.Duration(settings.TimeoutSeconds) * time.Second,
		FailureThreshold: uint32(settings.FailureThreshold),
		SuccessThreshold: uint32(settings.SuccessThreshold),
	}, nil)
}
