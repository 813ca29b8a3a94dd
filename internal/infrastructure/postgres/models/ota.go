package models

import (
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
)

type OTATaskModel struct {
	ID        string       `gorm:"primaryKey"`
	Name      string       `gorm:"not null"`
	PackageID string       `gorm:"index;not null"`
	Package   PackageModel `gorm:"foreignKey:PackageID;references:ID"`
	// Target device IDs frozen at creation time.
	DeviceIDs []string             `gorm:"serializer:json"`
	Status    domain.OTATaskStatus `gorm:"index"`
	CreatedAt time.Time
}

func (OTATaskModel) TableName() string { return "ota_tasks" }

type DeviceOTAModel struct {
	ID          string                 `gorm:"primaryKey"`
	DeviceID    string                 `gorm:"index:idx_device_status"`
	TaskID      string                 `gorm:"index"`
	Status      domain.DeviceOTAStatus `gorm:"index:idx_device_status"`
	Awaiting    domain.AwaitingKind
	Description string
	Path        string
}

func (DeviceOTAModel) TableName() string { return "device_otas" }
