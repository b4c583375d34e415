package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/bidgate-backend/internal/data/models"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.RFP{},
		&models.GateSnapshot{},
	)
}
