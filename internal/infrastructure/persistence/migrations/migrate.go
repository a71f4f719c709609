// Package migrations versions the postgres schema with golang-migrate
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// ErrDirty means a previous run failed halfway; the schema needs manual repair
// before migrating again.
var ErrDirty = errors.New("schema is dirty")

// Migrator applies the embedded schema to a postgres database
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New prepares the embedded migrations on one connection borrowed from db.
// Close returns the connection; db itself stays open.
func New(db *sql.DB, databaseName string, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("borrow migration connection: %w", err)
	}
	target, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    databaseName,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("prepare postgres migration target: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, databaseName, target)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}

	log := logger.Named("migrations")
	m.Log = zapLogger{log: log}
	return &Migrator{m: m, log: log}, nil
}

// Up brings the schema to the latest version
func (mg *Migrator) Up() error {
	from, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	start := time.Now()
	err = mg.m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema is up to date", zap.Uint("version", from))
		return nil
	case err != nil:
		return fmt.Errorf("apply migrations from version %d: %w", from, err)
	}

	to, _, _ := mg.Version()
	mg.log.Info("Schema migrated",
		zap.Uint("from", from),
		zap.Uint("to", to),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Version reports the applied version; 0 before the first migration
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the embedded source and the borrowed connection
func (mg *Migrator) Close() error {
	srcErr, connErr := mg.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if connErr != nil {
		return fmt.Errorf("release migration connection: %w", connErr)
	}
	return nil
}

// zapLogger routes golang-migrate progress lines to zap at debug level
type zapLogger struct {
	log *zap.Logger
}

func (l zapLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l zapLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
