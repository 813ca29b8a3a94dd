package usecase

import (
	"log/slog"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
	devicedto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/device"
)

type DeviceUsecase interface {
	CreateDevice(input *devicedto.CreateDeviceInput) (*devicedto.DeviceOutput, error)
	GetDeviceByID(id string) (*domain.Device, error)
	GetDeviceByDeviceID(deviceID string) (*domain.Device, error)
	ListDevices() ([]*devicedto.DeviceOutput, error)
	TouchLiveness(deviceID string) error
	CheckOfflineDevices() error
}

type DefaultDeviceUsecase struct {
	deviceRepo  domain.DeviceRepository
	productRepo domain.ProductRepository
	transport   domain.TransportPort
	metrics     *metrics.OTAMetrics

	offlineTimeout time.Duration
}

func NewDefaultDeviceUsecase(
	deviceRepo domain.DeviceRepository,
	productRepo domain.ProductRepository,
	transport domain.TransportPort,
	otaMetrics *metrics.OTAMetrics,
	offlineTimeout time.Duration) *DefaultDeviceUsecase {

	return &DefaultDeviceUsecase{
		deviceRepo:     deviceRepo,
		productRepo:    productRepo,
		transport:      transport,
		metrics:        otaMetrics,
		offlineTimeout: offlineTimeout,
	}
}

// CreateDevice provisions a device under a product and subscribes its
// upstream topic so its telemetry starts flowing immediately.
func (uc *DefaultDeviceUsecase) CreateDevice(input *devicedto.CreateDeviceInput) (*devicedto.DeviceOutput, error) {
	product, err := uc.productRepo.GetProductByID(input.ProductID)
	if err != nil {
		return nil, err
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	deviceID := input.DeviceID
	if deviceID == "" {
		deviceID = idGenerator()
	}
	device := &domain.Device{
		ID:        idGenerator(),
		Name:      input.Name,
		Code:      input.Code,
		DeviceID:  deviceID,
		IPAddress: input.IPAddress,
		ProductID: product.ID,
		Status:    domain.DeviceUnactivated,
		CreatedAt: time.Now(),
	}
	if err := uc.deviceRepo.CreateDevice(device); err != nil {
		return nil, err
	}

	if uc.transport != nil {
		if err := uc.transport.Subscribe(domain.DeviceUpstreamTopic(deviceID)); err != nil {
			slog.Error("failed to subscribe new device topic", "device_id", deviceID, "error", err.Error())
		}
	}

	device.Product = product
	return deviceToOutput(device), nil
}

func (uc *DefaultDeviceUsecase) GetDeviceByID(id string) (*domain.Device, error) {
	return uc.deviceRepo.GetDeviceByID(id)
}

func (uc *DefaultDeviceUsecase) GetDeviceByDeviceID(deviceID string) (*domain.Device, error) {
	return uc.deviceRepo.GetDeviceByDeviceID(deviceID)
}

func (uc *DefaultDeviceUsecase) ListDevices() ([]*devicedto.DeviceOutput, error) {
	devices, err := uc.deviceRepo.ListDevices()
	if err != nil {
		return nil, err
	}

	outputs := make([]*devicedto.DeviceOutput, len(devices))
	for i, device := range devices {
		outputs[i] = deviceToOutput(device)
	}
	return outputs, nil
}

// TouchLiveness marks the device online now. Every valid inbound message from
// the device refreshes it.
func (uc *DefaultDeviceUsecase) TouchLiveness(deviceID string) error {
	return uc.deviceRepo.UpdateDeviceLiveness(deviceID, time.Now())
}

// CheckOfflineDevices demotes devices that went quiet for longer than the
// offline timeout. Best-effort: only telemetry ever promotes back to online.
func (uc *DefaultDeviceUsecase) CheckOfflineDevices() error {
	threshold := time.Now().Add(-uc.offlineTimeout)

	demoted, err := uc.deviceRepo.MarkDevicesOffline(threshold)
	if err != nil {
		return err
	}
	if demoted > 0 {
		uc.metrics.DevicesMarkedOfflineTotal.Add(float64(demoted))
		slog.Info("devices marked offline", "count", demoted)
	}
	return nil
}

func deviceToOutput(device *domain.Device) *devicedto.DeviceOutput {
	output := &devicedto.DeviceOutput{
		ID:        device.ID,
		Name:      device.Name,
		Code:      device.Code,
		DeviceID:  device.DeviceID,
		IPAddress: device.IPAddress,
		ProductID: device.ProductID,
		Status:    string(device.Status),
		Version:   device.Version,
		LastSeen:  device.LastSeen,
		CreatedAt: device.CreatedAt,
	}
	if device.Product != nil {
		output.ProductName = device.Product.Name
	}
	return output
}
