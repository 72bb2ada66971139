package db

import (
	types "github.com/yungbote/toxicity-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Ingested YouTube data
		&types.Channel{},
		&types.Video{},
		&types.Comment{},

		// Computed scores (upsert target)
		&types.ToxicityScore{},
	)
}
