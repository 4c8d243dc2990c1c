package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"coursehub/config"
	"coursehub/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDb opens the configured database, sets up pooling and runs migrations.
func ConnectDb(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := Open(dialector, cfg.DBLogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DBDriver, err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Open wraps gorm.Open with the settings every store relies on:
// duplicate-key errors are translated into gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, logLevel string) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(parseLogLevel(logLevel)),
	})
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running Migrations...")

	if err := db.AutoMigrate(
		&models.Course{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully.")
	return nil
}

// Ping checks that the database is reachable.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// OpenInMemory returns a migrated, private sqlite database. It is used by
// tests and by the course import script's dry-run mode.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(sqlite.Open("file::memory:"), "silent")
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Course{}, &models.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
