package postgres

import (
	"log"

	"github.com/mxvision/iothub-ota-service/internal/config"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.OTAConfig) *gorm.DB {
	dsn := cfg.OTADB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.ProductModel{}, &models.DeviceModel{}, &models.PackageModel{}, &models.OTATaskModel{}, &models.DeviceOTAModel{})

	return db
}
