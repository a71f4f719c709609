// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/application/reconcile"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/keyword"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/pantry/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConfigPath is the config file to load; empty searches the default paths
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ClassifierModule,
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	NewConfigReloads,
	NewConfig,
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	NewLogger,
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetrics,
	func(m *monitoring.Metrics) outbound.ReconciliationMetrics {
		return m
	},
	NewTracing,
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	NewDatabase,
	func(d *Database) *gorm.DB {
		return d.DB
	},
)

// CacheModule provides the cache and submission guard
var CacheModule = fx.Provide(
	NewCacheBackend,
	func(b *CacheBackend) outbound.CacheRepository {
		return b.Cache
	},
	func(b *CacheBackend) outbound.SubmissionGuard {
		return b.Guard
	},
	func(b *CacheBackend) outbound.RateLimiter {
		return b.Limiter
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewIngredientRepository,
	gormRepo.NewInventoryRepository,
	gormRepo.NewShoppingListRepository,
	gormRepo.NewLocationRepository,
	gormRepo.NewTransactor,
)

// ClassifierModule provides the location classifier
var ClassifierModule = fx.Provide(
	NewClassifier,
	func(c *Classifier) outbound.LocationClassifier {
		return c.LocationClassifier
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	NewReconciliationService,
)

// HTTPModule provides HTTP server and health checks
var HTTPModule = fx.Provide(
	NewHealthCheck,
	apiserver.NewAPIServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewConfig loads the configuration and watches the config file
func NewConfig(path ConfigPath, reloads *ConfigReloads) (*config.Config, error) {
	return config.LoadAndWatch(string(path), reloads.publish, reloads.fail)
}

// NewLogger builds the logger and keeps its level in sync with config reloads
func NewLogger(cfg *config.Config, reloads *ConfigReloads) (*zap.Logger, error) {
	log, level, err := logger.NewWithLevel(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug || cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, err
	}

	reloads.attach(log)
	reloads.Subscribe(func(updated *config.Config) {
		next := logger.ParseLevel(updated.App.LogLevel)
		if next != level.Level() {
			log.Info("Log level changed", zap.Stringer("from", level.Level()), zap.Stringer("to", next))
			level.SetLevel(next)
		}
	})

	return log, nil
}

// NewTracing installs the OTLP tracer provider when tracing is enabled
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		Insecure:       cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return tp, nil
}

// Database bundles the GORM handle with its health checker
type Database struct {
	DB      *gorm.DB
	Checker healthcheck.Checker
	close   func() error
}

// NewDatabase opens sqlite or postgres as configured. Postgres schemas are
// versioned with migrations; sqlite is auto-migrated from the models.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Database, error) {
	var database *Database

	switch cfg.Database.Driver {
	case "postgres":
		cm, err := postgres.NewConnectionManager(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := migrate(cm, cfg.Database.Database, log); err != nil {
				_ = cm.Close()
				return nil, err
			}
		}
		database = &Database{DB: cm.GetDB(), Checker: healthcheck.Postgres(cm.Pool(), 0.9), close: cm.Close}

	default:
		db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogLevel(cfg.Database.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
		database = &Database{DB: db, Checker: healthcheck.Ping(sqlDB.PingContext), close: sqlDB.Close}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := database.close(); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}
			return nil
		},
	})
	return database, nil
}

func migrate(cm *postgres.ConnectionManager, name string, log *zap.Logger) error {
	m, err := migrations.New(cm.SQLDB(), name, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

func gormLogLevel(name string) gormLogger.LogLevel {
	switch strings.ToLower(name) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info", "debug":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// CacheBackend is the cache, submission guard and rate limiter of one
// backend. Checker is nil for the in-process backend; Limiter is nil when
// rate limiting is off.
type CacheBackend struct {
	Cache   outbound.CacheRepository
	Guard   outbound.SubmissionGuard
	Limiter outbound.RateLimiter
	Checker healthcheck.Checker
}

// NewCacheBackend selects the in-memory or redis backend
func NewCacheBackend(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*CacheBackend, error) {
	limit := cfg.Server.RateLimit

	if cfg.Cache.Driver == "redis" {
		client, err := redisRepo.NewClient(context.Background(), &cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return client.Close() }})

		backend := &CacheBackend{
			Cache:   redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log),
			Guard:   redisRepo.NewSubmissionGuard(client, cfg.Redis.KeyPrefix, log),
			Checker: healthcheck.Redis(client),
		}
		if limit.Enabled {
			backend.Limiter = redisRepo.NewRateLimiter(client, cfg.Redis.KeyPrefix, limit.Requests, limit.Window)
		}
		return backend, nil
	}

	cache := memory.NewCacheRepository(cfg.Cache.CleanupInterval)
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		cache.Close()
		return nil
	}})
	log.Info("Using in-memory cache and submission guard")

	backend := &CacheBackend{Cache: cache, Guard: memory.NewSubmissionGuard()}
	if limit.Enabled {
		backend.Limiter = memory.NewRateLimiter(limit.Requests, limit.Window)
	}
	return backend, nil
}

// Classifier is the configured location classifier with its health probes.
// Breaker is nil for the keyword classifier.
type Classifier struct {
	outbound.LocationClassifier
	Health  *ai.HealthChecker
	Breaker *healthcheck.CircuitBreaker
}

// NewClassifier builds the configured location classifier. Remote backends
// sit behind a circuit breaker and their answers are cached when enabled.
func NewClassifier(cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) *Classifier {
	var (
		remote outbound.LocationClassifier
		pinger ai.Pinger
	)

	switch cfg.Classifier.Provider {
	case "openai":
		c := openai.NewClassifier(cfg.Classifier, log)
		remote, pinger = c, c
	case "ollama":
		c := ollama.NewClassifier(cfg.Classifier, log)
		remote, pinger = c, c
	default:
		return &Classifier{
			LocationClassifier: keyword.NewClassifier(),
			Health:             ai.NewHealthChecker("keyword", nil, log),
		}
	}

	breaker := healthcheck.NewCircuitBreaker(cfg.Classifier.Provider, healthcheck.CircuitBreakerConfig{
		FailureThreshold: cfg.Classifier.BreakerFailures,
		Timeout:          cfg.Classifier.BreakerCooldown,
		OnStateChange: func(name string, from, to healthcheck.CircuitBreakerState) {
			log.Warn("Classifier circuit changed state",
				zap.String("provider", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	var classifier outbound.LocationClassifier = ai.NewBreakerClassifier(remote, breaker, log)
	if cfg.Classifier.EnableCache {
		classifier = ai.NewCachedClassifier(classifier, cache, cfg.Cache.ClassifierTTL, log)
	}

	return &Classifier{
		LocationClassifier: classifier,
		Health:             ai.NewHealthChecker(cfg.Classifier.Provider, pinger, log),
		Breaker:            breaker,
	}
}

// NewHealthCheck registers the dependency checks. Only the database is
// critical; classification falls back to default locations.
func NewHealthCheck(cfg *config.Config, db *Database, cache *CacheBackend, classifier *Classifier, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)
	hc.RegisterCritical("database", db.Checker)
	if cache.Checker != nil {
		hc.Register("redis", cache.Checker)
	}
	hc.Register("classifier", healthcheck.CheckFunc(func(ctx context.Context) healthcheck.Result {
		status := classifier.Health.CheckHealth(ctx)
		if !status.Healthy {
			return healthcheck.Result{Status: healthcheck.StatusDegraded, Detail: status.Detail, Data: status}
		}
		return healthcheck.Result{Status: healthcheck.StatusHealthy, Data: status}
	}))
	if classifier.Breaker != nil {
		hc.Register("classifier_circuit", healthcheck.Circuit(classifier.Breaker))
	}
	return hc
}

// ServiceParams are the dependencies of the reconciliation service
type ServiceParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	Ingredients outbound.IngredientRepository
	Inventory   outbound.InventoryRepository
	Shopping    outbound.ShoppingListRepository
	Locations   outbound.LocationRepository
	Transactor  outbound.Transactor
	Guard       outbound.SubmissionGuard
	Classifier  outbound.LocationClassifier
	Metrics     outbound.ReconciliationMetrics
}

// NewReconciliationService wires the reconciliation service
func NewReconciliationService(p ServiceParams) inbound.ReconciliationService {
	return reconcile.NewService(reconcile.Dependencies{
		Ingredients: p.Ingredients,
		Inventory:   p.Inventory,
		Shopping:    p.Shopping,
		Locations:   p.Locations,
		Transactor:  p.Transactor,
		Guard:       p.Guard,
		Classifier:  p.Classifier,
		Metrics:     p.Metrics,
	}, reconcile.Options{
		CommitConcurrency:   p.Config.Reconcile.CommitConcurrency,
		ClassifierTimeout:   p.Config.Reconcile.ClassifierTimeout,
		GuardTTL:            p.Config.Reconcile.GuardTTL,
		DefaultLocationName: p.Config.Reconcile.DefaultLocationName,
	}, p.Logger)
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	tracing *monitoring.TracingProvider,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting pantry service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("cache", cfg.Cache.Driver),
				zap.String("classifier", cfg.Classifier.Provider),
				zap.Bool("tracing", tracing.Enabled()),
			)

			if err := seedDemoUser(ctx, cfg, db, log); err != nil {
				return err
			}

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down pantry service")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}

func seedDemoUser(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
	if cfg.App.DemoUserID == "" {
		return nil
	}

	userID, err := uuid.Parse(cfg.App.DemoUserID)
	if err != nil {
		return fmt.Errorf("app.demo_user_id: %w", err)
	}
	if err := sqlite.SeedLocations(ctx, db, userID); err != nil {
		log.Warn("Failed to seed demo locations", zap.Error(err))
		return nil
	}

	log.Info("Demo user ready", zap.String("user_id", userID.String()))
	return nil
}
