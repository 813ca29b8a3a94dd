package repository

import (
	"errors"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/mappers"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOTARepository struct {
	DB *gorm.DB
}

func NewDefaultOTARepository(db *gorm.DB) *DefaultOTARepository {
	return &DefaultOTARepository{
		DB: db,
	}
}

// CreateTask writes the task and its per-device records in one transaction so
// they are never observable independently.
func (r *DefaultOTARepository) CreateTask(task *domain.OTATask, records []*domain.DeviceOTA) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMOTATask(task)).Error; err != nil {
			return err
		}
		recordModels := make([]*models.DeviceOTAModel, len(records))
		for i, record := range records {
			recordModels[i] = mappers.ToGORMDeviceOTA(record)
		}
		return tx.Create(recordModels).Error
	})
}

func (r *DefaultOTARepository) GetTaskByID(taskID string) (*domain.OTATask, error) {
	var taskModel models.OTATaskModel
	if err := r.DB.Preload("Package").First(&taskModel, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOTATask(&taskModel), nil
}

func (r *DefaultOTARepository) ListTasks() ([]*domain.OTATask, error) {
	var taskModels []*models.OTATaskModel
	if err := r.DB.Preload("Package").Order("created_at DESC").Find(&taskModels).Error; err != nil {
		return nil, err
	}

	tasks := make([]*domain.OTATask, len(taskModels))
	for i, taskModel := range taskModels {
		tasks[i] = mappers.ToDomainOTATask(taskModel)
	}

	return tasks, nil
}

func (r *DefaultOTARepository) SaveTask(task *domain.OTATask) error {
	return r.DB.Model(&models.OTATaskModel{}).Where("id = ?", task.ID).
		Update("status", task.Status).Error
}

func (r *DefaultOTARepository) GetDeviceOTAByID(id string) (*domain.DeviceOTA, error) {
	var recordModel models.DeviceOTAModel
	if err := r.DB.First(&recordModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeviceOTANotFound
		}
		return nil, err
	}
	return mappers.ToDomainDeviceOTA(&recordModel), nil
}

func (r *DefaultOTARepository) GetDeviceOTAByDeviceAndStatus(deviceID string, statuses ...domain.DeviceOTAStatus) (*domain.DeviceOTA, error) {
	var recordModel models.DeviceOTAModel
	err := r.DB.
		Where("device_id = ? AND status IN ?", deviceID, statuses).
		First(&recordModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainDeviceOTA(&recordModel), nil
}

func (r *DefaultOTARepository) FindActiveByDeviceIDs(deviceIDs []string) ([]*domain.DeviceOTA, error) {
	var recordModels []*models.DeviceOTAModel
	err := r.DB.
		Where("device_id IN ? AND status IN ?", deviceIDs, domain.ActiveOTAStatuses).
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainDeviceOTAs(recordModels), nil
}

func (r *DefaultOTARepository) GetDeviceOTAsByTaskID(taskID string) ([]*domain.DeviceOTA, error) {
	var recordModels []*models.DeviceOTAModel
	if err := r.DB.Where("task_id = ?", taskID).Find(&recordModels).Error; err != nil {
		return nil, err
	}
	return toDomainDeviceOTAs(recordModels), nil
}

func (r *DefaultOTARepository) GetDeviceOTAsByTaskAndStatus(taskID string, statuses ...domain.DeviceOTAStatus) ([]*domain.DeviceOTA, error) {
	var recordModels []*models.DeviceOTAModel
	err := r.DB.
		Where("task_id = ? AND status IN ?", taskID, statuses).
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainDeviceOTAs(recordModels), nil
}

func (r *DefaultOTARepository) SaveDeviceOTA(record *domain.DeviceOTA) error {
	return r.DB.Save(mappers.ToGORMDeviceOTA(record)).Error
}

func (r *DefaultOTARepository) CancelPendingByTaskID(taskID string) (int64, error) {
	result := r.DB.Model(&models.DeviceOTAModel{}).
		Where("task_id = ? AND status = ?", taskID, domain.OTAPending).
		Updates(map[string]interface{}{
			"status":      domain.OTACanceled,
			"awaiting":    domain.AwaitNone,
			"description": "",
			"path":        "",
		})
	return result.RowsAffected, result.Error
}

func toDomainDeviceOTAs(recordModels []*models.DeviceOTAModel) []*domain.DeviceOTA {
	records := make([]*domain.DeviceOTA, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = mappers.ToDomainDeviceOTA(recordModel)
	}
	return records
}
