package database

import (
	"harvestease-backend/internal/config"
	"harvestease-backend/internal/logger"
	"harvestease-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.WithModule("database").Fatalf("cannot connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		logger.WithModule("database").Fatalf("automigrate failed: %v", err)
	}

	logger.WithModule("database").Info("database connected, migration complete")
}

// Migrate creates or updates the schema for every collection. There are
// no foreign key constraints between collections on purpose: references
// (user id on crops/sales/expenses, stock id in cart lines) are weak and
// resolved by lookup, never cascaded.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Crop{},
		&models.Sale{},
		&models.Expense{},
		&models.Farmer{},
		&models.Stock{},
		&models.Cart{},
		&models.CartItem{},
		&models.DiseaseRecord{},
		&models.KnowledgePost{},
		&models.AuditLog{},
	)
}
