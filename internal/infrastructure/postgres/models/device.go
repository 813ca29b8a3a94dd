package models

import (
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
)

type ProductModel struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Protocol string
	Type     string
	Status   int
	Remark   string

	CreatedAt time.Time
}

func (ProductModel) TableName() string { return "products" }

type DeviceModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Code      string
	DeviceID  string `gorm:"uniqueIndex;not null"`
	IPAddress string
	ProductID string       `gorm:"index;not null"`
	Product   ProductModel `gorm:"foreignKey:ProductID;references:ID"`

	Status   domain.DeviceStatus `gorm:"index"`
	Version  string
	LastSeen *time.Time

	IsDeleted bool
	CreatedAt time.Time
}

func (DeviceModel) TableName() string { return "devices" }
