package db

import (
	"fmt"

	"github.com/zulandar/tickora/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Team{},
		&models.Project{},
		&models.Sprint{},
		&models.WorkItem{},
		&models.WorkItemBlocker{},
		&models.MetricsSnapshot{},
		&models.StandupResponse{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
