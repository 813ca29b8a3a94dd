package usecase

import (
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/kafka"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/logger"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
	otadto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/ota"
)

type OTAUsecase interface {
	CreateTask(input *otadto.CreateTaskInput) (*otadto.TaskOutput, error)
	ListTasks() ([]*otadto.TaskOutput, error)
	GetTaskDevices(taskID string) ([]*otadto.DeviceOTAOutput, error)

	RetryDeviceOTA(deviceOTAID string) error
	StopDeviceOTA(deviceOTAID string) error
	StopTask(taskID string) error

	HandleTelemetry(device *domain.Device, report *domain.TelemetryReport) error
	DispatchPendingCommand(device *domain.Device, reportedVersion string) error
}

// OTAEventPublisher carries lifecycle events to the event bus.
type OTAEventPublisher interface {
	PublishOTAEvent(event kafka.OTAEvent) error
}

type DefaultOTAUsecase struct {
	OTARepo     domain.OTARepository
	DeviceRepo  domain.DeviceRepository
	PackageRepo domain.PackageRepository
	Transport   domain.TransportPort
	Events      OTAEventPublisher
	EventLog    logger.OTAEventLogger
	Metrics     *metrics.OTAMetrics

	downloadBaseURL string
	qos             byte
	locks           *keyedMutex
}

func NewDefaultOTAUsecase(
	otaRepo domain.OTARepository,
	deviceRepo domain.DeviceRepository,
	packageRepo domain.PackageRepository,
	transport domain.TransportPort,
	events OTAEventPublisher,
	eventLog logger.OTAEventLogger,
	otaMetrics *metrics.OTAMetrics,
	downloadBaseURL string,
	qos byte) *DefaultOTAUsecase {

	return &DefaultOTAUsecase{
		OTARepo:         otaRepo,
		DeviceRepo:      deviceRepo,
		PackageRepo:     packageRepo,
		Transport:       transport,
		Events:          events,
		EventLog:        eventLog,
		Metrics:         otaMetrics,
		downloadBaseURL: downloadBaseURL,
		qos:             qos,
		locks:           newKeyedMutex(),
	}
}

// CreateTask admits a new rollout. Admission fails before any write when a
// target device already participates in an active rollout; on success the task
// and its per-device records are created as one unit.
func (uc *DefaultOTAUsecase) CreateTask(input *otadto.CreateTaskInput) (*otadto.TaskOutput, error) {
	pkg, err := uc.PackageRepo.GetPackageByID(input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.IsDeleted {
		return nil, domain.ErrPackageDeleted
	}

	active, err := uc.OTARepo.FindActiveByDeviceIDs(input.DeviceIDs)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, domain.ErrDeviceBusy
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	task := &domain.OTATask{
		ID:        idGenerator(),
		Name:      input.Name,
		PackageID: pkg.ID,
		DeviceIDs: input.DeviceIDs,
		Status:    domain.TaskPending,
		CreatedAt: time.Now(),
	}
	records := make([]*domain.DeviceOTA, len(input.DeviceIDs))
	for i, deviceID := range input.DeviceIDs {
		records[i] = &domain.DeviceOTA{
			ID:          idGenerator(),
			DeviceID:    deviceID,
			TaskID:      task.ID,
			Status:      domain.OTAPending,
			Awaiting:    domain.AwaitDownload,
			Description: domain.DescQueryingVersion,
		}
	}

	if err := uc.OTARepo.CreateTask(task, records); err != nil {
		return nil, err
	}

	uc.Metrics.TasksCreatedTotal.Inc()
	task.Package = pkg
	return taskToOutput(task), nil
}

func (uc *DefaultOTAUsecase) ListTasks() ([]*otadto.TaskOutput, error) {
	tasks, err := uc.OTARepo.ListTasks()
	if err != nil {
		return nil, err
	}

	outputs := make([]*otadto.TaskOutput, len(tasks))
	for i, task := range tasks {
		outputs[i] = taskToOutput(task)
	}
	return outputs, nil
}

func (uc *DefaultOTAUsecase) GetTaskDevices(taskID string) ([]*otadto.DeviceOTAOutput, error) {
	if _, err := uc.OTARepo.GetTaskByID(taskID); err != nil {
		return nil, err
	}
	records, err := uc.OTARepo.GetDeviceOTAsByTaskID(taskID)
	if err != nil {
		return nil, err
	}

	outputs := make([]*otadto.DeviceOTAOutput, len(records))
	for i, record := range records {
		outputs[i] = &otadto.DeviceOTAOutput{
			ID:          record.ID,
			DeviceID:    record.DeviceID,
			TaskID:      record.TaskID,
			Status:      string(record.Status),
			Description: record.Description,
			Path:        record.Path,
		}
	}
	return outputs, nil
}

func taskToOutput(task *domain.OTATask) *otadto.TaskOutput {
	output := &otadto.TaskOutput{
		ID:        task.ID,
		Name:      task.Name,
		PackageID: task.PackageID,
		DeviceIDs: task.DeviceIDs,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
	}
	if task.Package != nil {
		output.PackageName = task.Package.Name
		output.PackageVersion = task.Package.Version
	}
	return output
}
