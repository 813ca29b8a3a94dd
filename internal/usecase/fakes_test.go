package usecase

import (
	"sync"
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
)

// Registered once per test binary; promauto panics on duplicates.
var testMetrics = metrics.NewOTAMetrics()

// fakeOTARepo is an in-memory domain.OTARepository. Lookups return copies so
// usecase mutations only land through Save, like a real database.
type fakeOTARepo struct {
	mu      sync.Mutex
	tasks   map[string]*domain.OTATask
	records map[string]*domain.DeviceOTA
}

func newFakeOTARepo() *fakeOTARepo {
	return &fakeOTARepo{
		tasks:   make(map[string]*domain.OTATask),
		records: make(map[string]*domain.DeviceOTA),
	}
}

func copyTask(task *domain.OTATask) *domain.OTATask {
	c := *task
	return &c
}

func copyRecord(record *domain.DeviceOTA) *domain.DeviceOTA {
	c := *record
	return &c
}

func (f *fakeOTARepo) CreateTask(task *domain.OTATask, records []*domain.DeviceOTA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = copyTask(task)
	for _, record := range records {
		f.records[record.ID] = copyRecord(record)
	}
	return nil
}

func (f *fakeOTARepo) GetTaskByID(taskID string) (*domain.OTATask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return copyTask(task), nil
}

func (f *fakeOTARepo) ListTasks() ([]*domain.OTATask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]*domain.OTATask, 0, len(f.tasks))
	for _, task := range f.tasks {
		tasks = append(tasks, copyTask(task))
	}
	return tasks, nil
}

func (f *fakeOTARepo) SaveTask(task *domain.OTATask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = copyTask(task)
	return nil
}

func (f *fakeOTARepo) GetDeviceOTAByID(id string) (*domain.DeviceOTA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, domain.ErrDeviceOTANotFound
	}
	return copyRecord(record), nil
}

func (f *fakeOTARepo) GetDeviceOTAByDeviceAndStatus(deviceID string, statuses ...domain.DeviceOTAStatus) (*domain.DeviceOTA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.DeviceID != deviceID {
			continue
		}
		for _, status := range statuses {
			if record.Status == status {
				return copyRecord(record), nil
			}
		}
	}
	return nil, nil
}

func (f *fakeOTARepo) FindActiveByDeviceIDs(deviceIDs []string) ([]*domain.DeviceOTA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*domain.DeviceOTA
	for _, record := range f.records {
		for _, deviceID := range deviceIDs {
			if record.DeviceID == deviceID &&
				(record.Status == domain.OTAPending || record.Status == domain.OTARunning) {
				active = append(active, copyRecord(record))
			}
		}
	}
	return active, nil
}

func (f *fakeOTARepo) GetDeviceOTAsByTaskID(taskID string) ([]*domain.DeviceOTA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*domain.DeviceOTA
	for _, record := range f.records {
		if record.TaskID == taskID {
			records = append(records, copyRecord(record))
		}
	}
	return records, nil
}

func (f *fakeOTARepo) GetDeviceOTAsByTaskAndStatus(taskID string, statuses ...domain.DeviceOTAStatus) ([]*domain.DeviceOTA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*domain.DeviceOTA
	for _, record := range f.records {
		if record.TaskID != taskID {
			continue
		}
		for _, status := range statuses {
			if record.Status == status {
				records = append(records, copyRecord(record))
			}
		}
	}
	return records, nil
}

func (f *fakeOTARepo) SaveDeviceOTA(record *domain.DeviceOTA) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = copyRecord(record)
	return nil
}

func (f *fakeOTARepo) CancelPendingByTaskID(taskID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, record := range f.records {
		if record.TaskID == taskID && record.Status == domain.OTAPending {
			record.Status = domain.OTACanceled
			record.Awaiting = domain.AwaitNone
			record.Description = ""
			record.Path = ""
			count++
		}
	}
	return count, nil
}

type fakeDeviceRepo struct {
	mu       sync.Mutex
	devices  map[string]*domain.Device // keyed by internal ID
	versions map[string]string         // deviceID -> version written
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{
		devices:  make(map[string]*domain.Device),
		versions: make(map[string]string),
	}
}

func (f *fakeDeviceRepo) CreateDevice(device *domain.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *device
	f.devices[device.ID] = &c
	return nil
}

func (f *fakeDeviceRepo) GetDeviceByID(id string) (*domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	device, ok := f.devices[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	c := *device
	return &c, nil
}

func (f *fakeDeviceRepo) GetDeviceByDeviceID(deviceID string) (*domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, device := range f.devices {
		if device.DeviceID == deviceID {
			c := *device
			return &c, nil
		}
	}
	return nil, domain.ErrDeviceNotFound
}

func (f *fakeDeviceRepo) ListDevices() ([]*domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	devices := make([]*domain.Device, 0, len(f.devices))
	for _, device := range f.devices {
		c := *device
		devices = append(devices, &c)
	}
	return devices, nil
}

func (f *fakeDeviceRepo) SaveDevice(device *domain.Device) error {
	return f.CreateDevice(device)
}

func (f *fakeDeviceRepo) UpdateDeviceLiveness(deviceID string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, device := range f.devices {
		if device.DeviceID == deviceID {
			device.Status = domain.DeviceOnline
			t := seenAt
			device.LastSeen = &t
		}
	}
	return nil
}

func (f *fakeDeviceRepo) MarkDevicesOffline(threshold time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, device := range f.devices {
		if device.Status != domain.DeviceOnline {
			continue
		}
		if device.LastSeen == nil || device.LastSeen.Before(threshold) {
			device.Status = domain.DeviceOffline
			count++
		}
	}
	return count, nil
}

func (f *fakeDeviceRepo) UpdateDeviceVersion(deviceID string, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[deviceID] = version
	for _, device := range f.devices {
		if device.DeviceID == deviceID {
			device.Version = version
		}
	}
	return nil
}

type fakePackageRepo struct {
	mu       sync.Mutex
	packages map[string]*domain.Package
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: make(map[string]*domain.Package)}
}

func (f *fakePackageRepo) CreatePackage(pkg *domain.Package) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *pkg
	f.packages[pkg.ID] = &c
	return nil
}

func (f *fakePackageRepo) GetPackageByID(id string) (*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	c := *pkg
	return &c, nil
}

func (f *fakePackageRepo) GetActiveByProductAndVersion(productID, version string) (*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, pkg := range f.packages {
		if pkg.ProductID == productID && pkg.Version == version && !pkg.IsDeleted {
			c := *pkg
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakePackageRepo) ListPackages() ([]*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var packages []*domain.Package
	for _, pkg := range f.packages {
		if !pkg.IsDeleted {
			c := *pkg
			packages = append(packages, &c)
		}
	}
	return packages, nil
}

func (f *fakePackageRepo) MarkDeleted(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return domain.ErrPackageNotFound
	}
	pkg.IsDeleted = true
	return nil
}

type publishedMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
}

type fakeTransport struct {
	mu         sync.Mutex
	published  []publishedMessage
	subscribed []string
	inbound    chan domain.InboundMessage
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbound: make(chan domain.InboundMessage, 16)}
}

func (f *fakeTransport) Publish(topic string, payload []byte, qos byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{Topic: topic, Payload: payload, QoS: qos})
	return nil
}

func (f *fakeTransport) Subscribe(topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, topics...)
	return nil
}

func (f *fakeTransport) IsConnected() bool { return true }

func (f *fakeTransport) Messages() <-chan domain.InboundMessage { return f.inbound }

func (f *fakeTransport) publishedMessages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}
