// Package storage provides a GORM-based database layer for the Vigil
// monitoring dashboard.
//
// It supports both SQLite (for development and single-node deployments)
// and PostgreSQL (for production) with automatic schema migration,
// connection pooling, and clean resource management. The store is the
// single source of truth; concurrent writers rely on its transactional
// guarantees rather than application-level locking.
package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vigil/internal/config"
)

// Storage wraps the GORM database instance and provides access to it.
type Storage struct {
	db *gorm.DB
}

// New initializes a new Storage instance using GORM based on the provided
// configuration.
//
// Supported drivers:
//   - "sqlite": for development and single-node deployments
//   - "postgres": for production, high-availability setups
//
// Connection pooling and timeouts are configured according to
// config.StorageConfig. All models are auto-migrated on startup.
func New(cfg config.StorageConfig) (*Storage, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		// Enable WAL and foreign keys via DSN
		dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on", cfg.DSN)
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	// TranslateError maps driver-specific constraint violations to
	// gorm.ErrDuplicatedKey and friends, so handlers can distinguish
	// bad input from an unreachable store.
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sql.DB from GORM: %w", err)
	}

	// Apply connection pool settings from config
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Auto-migrate all models
	models := []interface{}{
		&Server{},
		&Container{},
		&MetricSample{},
		&Alert{},
		&User{},
		&AuditLog{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
	}

	return &Storage{db: db}, nil
}

// DB returns the underlying GORM database instance.
// This is the primary interface for all database operations.
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve sql.DB for closing: %w", err)
	}
	return sqlDB.Close()
}
