package repository

import (
	"errors"
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/mappers"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDeviceRepository struct {
	DB *gorm.DB
}

func NewDefaultDeviceRepository(db *gorm.DB) *DefaultDeviceRepository {
	return &DefaultDeviceRepository{
		DB: db,
	}
}

func (r *DefaultDeviceRepository) CreateDevice(device *domain.Device) error {
	deviceModel := mappers.ToGORMDevice(device)
	return r.DB.Create(deviceModel).Error
}

func (r *DefaultDeviceRepository) GetDeviceByID(id string) (*domain.Device, error) {
	var deviceModel models.DeviceModel
	if err := r.DB.Preload("Product").First(&deviceModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDevice(&deviceModel), nil
}

func (r *DefaultDeviceRepository) GetDeviceByDeviceID(deviceID string) (*domain.Device, error) {
	var deviceModel models.DeviceModel
	if err := r.DB.Preload("Product").First(&deviceModel, "device_id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDevice(&deviceModel), nil
}

func (r *DefaultDeviceRepository) ListDevices() ([]*domain.Device, error) {
	var deviceModels []*models.DeviceModel
	if err := r.DB.Preload("Product").Where("is_deleted = ?", false).Find(&deviceModels).Error; err != nil {
		return nil, err
	}

	devices := make([]*domain.Device, len(deviceModels))
	for i, deviceModel := range deviceModels {
		devices[i] = mappers.ToDomainDevice(deviceModel)
	}

	return devices, nil
}

func (r *DefaultDeviceRepository) SaveDevice(device *domain.Device) error {
	return r.DB.Save(mappers.ToGORMDevice(device)).Error
}

func (r *DefaultDeviceRepository) UpdateDeviceLiveness(deviceID string, seenAt time.Time) error {
	return r.DB.Model(&models.DeviceModel{}).Where("device_id = ?", deviceID).Updates(map[string]interface{}{
		"status":    domain.DeviceOnline,
		"last_seen": seenAt,
	}).Error
}

func (r *DefaultDeviceRepository) MarkDevicesOffline(threshold time.Time) (int64, error) {
	result := r.DB.Model(&models.DeviceModel{}).
		Where("status = ?", domain.DeviceOnline).
		Where("last_seen < ? OR last_seen IS NULL", threshold).
		Update("status", domain.DeviceOffline)
	return result.RowsAffected, result.Error
}

func (r *DefaultDeviceRepository) UpdateDeviceVersion(deviceID string, version string) error {
	return r.DB.Model(&models.DeviceModel{}).Where("device_id = ?", deviceID).
		Update("version", version).Error
}
