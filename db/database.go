package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"calificaciones_app_go/logging"
	"calificaciones_app_go/models"
)

var DB *gorm.DB

// Options select the database backend
type Options struct {
	Driver      string // sqlite or postgres
	Path        string // sqlite file
	DatabaseURL string // postgres DSN
	Environment string
}

// Initialize sets up the database connection. SQLite runs in WAL mode for
// concurrency; Postgres uses the simple protocol to avoid prepared statement caching.
func Initialize(opts Options) error {
	var err error

	// Determine log level based on environment
	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	switch strings.ToLower(opts.Driver) {
	case "", "sqlite":
		DB, err = gorm.Open(sqlite.Open(opts.Path+"?_journal_mode=WAL"), gormCfg)
	case "postgres":
		DB, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormCfg)
	default:
		return fmt.Errorf("unknown database driver %q", opts.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.L().Infow("database connection established", "driver", opts.Driver)
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.L().Info("database migrations completed")
	return nil
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.Office{},
		&models.Official{},
		&models.MovementRecord{},
		&models.PersonnelEvent{},
		&models.HearingRecord{},
		&models.PeriodScore{},
		&models.OfficeScore{},
		&models.ConsolidatedRecord{},
		&models.SubfactorResult{},
		&models.ReturnObservation{},
		&models.StatisticsExport{},
	}
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
