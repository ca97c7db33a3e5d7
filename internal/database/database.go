// Package database provides snapshot database connection management.
// The default backend is a local sqlite file; postgres is selected with
// DB_DRIVER=postgres and the usual DB_* variables.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbConfig "github.com/festy23/squadup/internal/database/config"
)

// Driver names accepted by DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFromEnv returns the configured database driver.
func DriverFromEnv() string {
	return dbConfig.GetEnv("DB_DRIVER", DriverSQLite)
}

// New creates a snapshot database connection using environment variables.
func New() (*gorm.DB, error) {
	switch driver := DriverFromEnv(); driver {
	case DriverSQLite:
		return NewSQLite(dbConfig.GetEnv("DB_PATH", "squadup.db"))
	case DriverPostgres:
		return NewPostgres(dbConfig.LoadConfigFromEnv())
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s (must be: sqlite, postgres)", driver)
	}
}

// NewSQLite opens a sqlite database at the given path.
func NewSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// NewPostgres opens a postgres database with the given configuration.
func NewPostgres(cfg dbConfig.Config) (*gorm.DB, error) {
	dsn := dbConfig.BuildDSN(cfg)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, dbConfig.SanitizeError(err, cfg)
	}
	return db, nil
}

// HealthCheck verifies database connection availability.
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
