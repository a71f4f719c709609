//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/migrations"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDatabase is a migrated postgres running in a container
type TestDatabase struct {
	Container testcontainers.Container
	GormDB    *gorm.DB
	PgxPool   *pgxpool.Pool
	DSN       string
	t         *testing.T
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "pantry_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// SetupTestDatabase starts postgres and applies the embedded migrations
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig starts a test database with custom configuration
func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	dsnFor := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Username, cfg.Password, host, port.Port(), cfg.Database)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			ExposedPorts: []string{cfg.Port + "/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       cfg.Database,
				"POSTGRES_USER":     cfg.Username,
				"POSTGRES_PASSWORD": cfg.Password,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForSQL(nat.Port(cfg.Port+"/tcp"), "pgx", dsnFor),
			),
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw",
			},
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port(cfg.Port))
	require.NoError(t, err)
	dsn := dsnFor(host, port)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err, "Failed to parse pgx config")
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err, "Failed to create pgx pool")

	sqlDB := stdlib.OpenDBFromPool(pool)
	migrator, err := migrations.New(sqlDB, cfg.Database, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create GORM connection")

	td := &TestDatabase{
		Container: container,
		GormDB:    gormDB,
		PgxPool:   pool,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(td.Cleanup)

	return td
}

// TruncateAllTables removes all rows while keeping the schema
func (td *TestDatabase) TruncateAllTables() error {
	return td.GormDB.Exec(
		"TRUNCATE TABLE inventory_items, shopping_list_items, locations, ingredients CASCADE",
	).Error
}

// Cleanup closes connections and stops the container
func (td *TestDatabase) Cleanup() {
	if td.PgxPool != nil {
		td.PgxPool.Close()
	}
	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			td.t.Logf("Failed to terminate postgres container: %v", err)
		}
	}
}
