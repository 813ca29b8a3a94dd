package mappers

import (
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
)

func ToGORMOTATask(task *domain.OTATask) *models.OTATaskModel {
	return &models.OTATaskModel{
		ID:        task.ID,
		Name:      task.Name,
		PackageID: task.PackageID,
		DeviceIDs: task.DeviceIDs,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	}
}

func ToDomainOTATask(model *models.OTATaskModel) *domain.OTATask {
	task := &domain.OTATask{
		ID:        model.ID,
		Name:      model.Name,
		PackageID: model.PackageID,
		DeviceIDs: model.DeviceIDs,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
	}
	if model.Package.ID != "" {
		task.Package = ToDomainPackage(&model.Package)
	}
	return task
}

func ToGORMDeviceOTA(record *domain.DeviceOTA) *models.DeviceOTAModel {
	return &models.DeviceOTAModel{
		ID:          record.ID,
		DeviceID:    record.DeviceID,
		TaskID:      record.TaskID,
		Status:      record.Status,
		Awaiting:    record.Awaiting,
		Description: record.Description,
		Path:        record.Path,
	}
}

func ToDomainDeviceOTA(model *models.DeviceOTAModel) *domain.DeviceOTA {
	return &domain.DeviceOTA{
		ID:          model.ID,
		DeviceID:    model.DeviceID,
		TaskID:      model.TaskID,
		Status:      model.Status,
		Awaiting:    model.Awaiting,
		Description: model.Description,
		Path:        model.Path,
	}
}
