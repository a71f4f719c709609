// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	gormModels "github.com/alchemorsel/pantry/internal/infrastructure/persistence/gorm"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultLocationNames are created for a user by SeedLocations
var DefaultLocationNames = []string{"Pantry", "Fridge", "Freezer"}

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	inMemory := dbPath == "" || dbPath == ":memory:"
	if inMemory {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every connection to :memory: is a separate database
	if inMemory {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedLocations gives a user the default storage locations if they have none
func SeedLocations(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	var count int64
	if err := db.WithContext(ctx).Model(&gormModels.LocationModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	repo := gormModels.NewLocationRepository(db)
	for i, name := range DefaultLocationNames {
		loc, err := kitchen.NewLocation(userID, name, i)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, loc); err != nil {
			return fmt.Errorf("failed to seed location %s: %w", name, err)
		}
	}

	return nil
}
