package repo

import (
	"github.com/quantora/coinsentry/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.TriggerLog{})
}
