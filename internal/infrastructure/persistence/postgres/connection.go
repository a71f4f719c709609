// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// ConnectionManager owns the pgx pool behind the GORM handle
type ConnectionManager struct {
	logger  *zap.Logger
	db      *gorm.DB
	pool    *pgxpool.Pool
	writeDB *sql.DB
}

// NewConnectionManager opens the primary pool and registers read replicas
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	log = log.Named("postgres")

	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: NewGORMLogger(log, cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cm := &ConnectionManager{
		logger:  log,
		db:      db,
		pool:    pool,
		writeDB: sqlDB,
	}

	if replicas := cfg.GetReplicaDSNs(); len(replicas) > 0 {
		if err := cm.registerReplicas(replicas); err != nil {
			log.Warn("Failed to register read replicas", zap.Error(err))
		}
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int("read_replicas", len(cfg.Database.ReadReplicas)),
	)

	return cm, nil
}

func (cm *ConnectionManager) registerReplicas(dsns []string) error {
	replicas := make([]gorm.Dialector, len(dsns))
	for i, dsn := range dsns {
		replicas[i] = postgres.Open(dsn)
	}

	return cm.db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
}

// GetDB returns the GORM handle
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// Pool returns the primary pgx pool
func (cm *ConnectionManager) Pool() *pgxpool.Pool {
	return cm.pool
}

// SQLDB returns the primary database/sql handle, used by migrations
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// Close closes the pool
func (cm *ConnectionManager) Close() error {
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close database handle", zap.Error(err))
	}
	cm.pool.Close()
	return nil
}

// NewGORMLogger routes GORM output through zap
func NewGORMLogger(log *zap.Logger, level string, slowThreshold time.Duration) logger.Interface {
	logLevel := logger.Silent
	switch level {
	case "debug":
		logLevel = logger.Info
	case "info", "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	}

	return logger.New(
		&GORMLogWriter{logger: log},
		logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GORMLogWriter implements GORM's Writer interface on top of zap
type GORMLogWriter struct {
	logger *zap.Logger
}

// Printf implements the Writer interface
func (w *GORMLogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn("GORM slow query", zap.String("message", msg))
	case strings.Contains(msg, "error"), strings.Contains(msg, "ERROR"):
		w.logger.Error("GORM error", zap.String("message", msg))
	default:
		w.logger.Debug("GORM log", zap.String("message", msg))
	}
}
