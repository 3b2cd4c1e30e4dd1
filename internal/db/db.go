package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Kaltroniz/Smart-Parking-System/config"
	"github.com/Kaltroniz/Smart-Parking-System/internal/model"
)

// Init initializes the database connection, runs migrations and establishes
// the startup baseline: one status row per slot and a closed gate record.
func Init(storeCfg *config.StoreConfig, fleetCfg *config.FleetConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(storeCfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(storeCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(storeCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(storeCfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(gormDB, fleetCfg.Size); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return gormDB, nil
}

// Migrate runs the schema migrations and seeds the fixed fleet. It is split
// from Init so tests can run it against their own database handle.
func Migrate(gormDB *gorm.DB, fleetSize int) error {
	if err := gormDB.AutoMigrate(
		&model.SlotStatus{},
		&model.BookingRecord{},
		&model.GateState{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// Seed one row per slot so the sensor feed always covers the full fleet.
	// The hardware bridge overwrites these as readings arrive.
	slots := make([]model.SlotStatus, fleetSize)
	for i := range slots {
		slots[i] = model.SlotStatus{SlotIndex: i, Status: "available"}
	}
	if err := gormDB.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots).Error; err != nil {
		return fmt.Errorf("failed to seed slot rows: %w", err)
	}

	return nil
}
