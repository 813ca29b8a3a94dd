package mappers

import (
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
)

func ToGORMDevice(device *domain.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:        device.ID,
		Name:      device.Name,
		Code:      device.Code,
		DeviceID:  device.DeviceID,
		IPAddress: device.IPAddress,
		ProductID: device.ProductID,
		Status:    device.Status,
		Version:   device.Version,
		LastSeen:  device.LastSeen,
		IsDeleted: device.IsDeleted,
		CreatedAt: device.CreatedAt,
	}
}

func ToDomainDevice(model *models.DeviceModel) *domain.Device {
	device := &domain.Device{
		ID:        model.ID,
		Name:      model.Name,
		Code:      model.Code,
		DeviceID:  model.DeviceID,
		IPAddress: model.IPAddress,
		ProductID: model.ProductID,
		Status:    model.Status,
		Version:   model.Version,
		LastSeen:  model.LastSeen,
		IsDeleted: model.IsDeleted,
		CreatedAt: model.CreatedAt,
	}
	if model.Product.ID != "" {
		device.Product = ToDomainProduct(&model.Product)
	}
	return device
}

func ToGORMProduct(product *domain.Product) *models.ProductModel {
	return &models.ProductModel{
		ID:        product.ID,
		Name:      product.Name,
		Protocol:  product.Protocol,
		Type:      product.Type,
		Status:    product.Status,
		Remark:    product.Remark,
		CreatedAt: product.CreatedAt,
	}
}

func ToDomainProduct(model *models.ProductModel) *domain.Product {
	return &domain.Product{
		ID:        model.ID,
		Name:      model.Name,
		Protocol:  model.Protocol,
		Type:      model.Type,
		Status:    model.Status,
		Remark:    model.Remark,
		CreatedAt: model.CreatedAt,
	}
}
