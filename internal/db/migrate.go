package db

import (
	"fmt"

	"github.com/harborcrm/flowboard/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model for migration, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.Member{},
		&models.Board{},
		&models.Column{},
		&models.Sprint{},
		&models.Component{},
		&models.Issue{},
		&models.IssueLink{},
		&models.Comment{},
		&models.Watch{},
		&models.Notification{},
		&models.Activity{},
		&models.AutomationRule{},
		&models.TimeEntry{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
