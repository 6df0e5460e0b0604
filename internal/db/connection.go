package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dagapurva3/senior-care-incidents/internal/logger"
	"github.com/dagapurva3/senior-care-incidents/internal/models"
)

// Connect opens the PostgreSQL connection described by dsn.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := gormlogger.Error
	if debug {
		level = gormlogger.Info
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connected successfully", nil)
	return conn, nil
}

// AutoMigrate creates or updates the incidents table.
func AutoMigrate(conn *gorm.DB) error {
	logger.Info("Running incident table migration", nil)
	if err := conn.AutoMigrate(&models.Incident{}); err != nil {
		return fmt.Errorf("incident migration failed: %w", err)
	}
	logger.Info("Incident table migrated successfully", nil)
	return nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
