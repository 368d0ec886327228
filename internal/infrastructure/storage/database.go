package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the gorm connection backing a GormStore
type Database struct {
	DB     *gorm.DB
	System string // "sqlite" or "postgresql"
}

// DatabaseOptions carries the ambient settings shared by both SQL drivers
type DatabaseOptions struct {
	Logger   *zap.Logger
	LogLevel string
	Tracing  telemetry.DBTracingConfig
}

// OpenSQLite opens (creating if needed) the SQLite file at path and migrates the entries table
func OpenSQLite(path string, opts DatabaseOptions) (*Database, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked"
	sqlDB.SetMaxOpenConns(1)

	// PostgreSQL schemas are owned by cmd/migrate; SQLite files are created on demand.
	if err := db.AutoMigrate(&StorageEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite storage: %w", err)
	}

	d := &Database{DB: db, System: "sqlite"}
	if err := d.registerTracing(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenPostgres connects to PostgreSQL with pool settings from cfg
func OpenPostgres(cfg *config.DatabaseConfig, opts DatabaseOptions) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Database{DB: db, System: "postgresql"}
	if err := d.registerTracing(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func gormConfig(opts DatabaseOptions) *gorm.Config {
	var gl gormlogger.Interface = gormlogger.Discard
	if opts.Logger != nil {
		gormOpts := []logger.GormLoggerOption{logger.WithFullSQL(opts.Tracing.LogFullSQL)}
		if opts.Tracing.SlowQueryThresh > 0 {
			gormOpts = append(gormOpts, logger.WithSlowThreshold(opts.Tracing.SlowQueryThresh))
		}
		gl = logger.NewGormLogger(opts.Logger, logger.MapGormLogLevel(opts.LogLevel), gormOpts...)
	}
	return &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	}
}

func (d *Database) registerTracing(opts DatabaseOptions) error {
	if !opts.Tracing.Enabled {
		return nil
	}
	cfg := opts.Tracing
	cfg.DBSystem = d.System
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := telemetry.RegisterDBTracing(d.DB, cfg, log); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
