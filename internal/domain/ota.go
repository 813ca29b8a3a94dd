package domain

import "time"

type OTATaskStatus string

const (
	TaskPending   OTATaskStatus = "pending"
	TaskRunning   OTATaskStatus = "running"
	TaskCompleted OTATaskStatus = "completed"
	TaskCanceled  OTATaskStatus = "canceled"
	TaskFailed    OTATaskStatus = "failed"
	// TaskStopping is transitional: set while running participants are being
	// told to stop, resolved to canceled/failed/completed by aggregation.
	TaskStopping OTATaskStatus = "stopping"
)

type DeviceOTAStatus string

const (
	OTAPending   DeviceOTAStatus = "pending"
	OTARunning   DeviceOTAStatus = "running"
	OTACompleted DeviceOTAStatus = "completed"
	OTACanceled  DeviceOTAStatus = "canceled"
	OTAStopping  DeviceOTAStatus = "stopping"
	OTAFailed    DeviceOTAStatus = "failed"
)

// ActiveOTAStatuses are the statuses that make a device busy with a rollout.
// A device may hold at most one DeviceOTA in these statuses across all tasks.
var ActiveOTAStatuses = []DeviceOTAStatus{OTAPending, OTARunning}

func (s DeviceOTAStatus) Terminal() bool {
	return s == OTACompleted || s == OTACanceled || s == OTAFailed
}

// AwaitingKind tells which instruction a pending participation is waiting for.
// It replaces branching on the human-readable description text.
type AwaitingKind string

const (
	AwaitNone     AwaitingKind = "none"
	AwaitDownload AwaitingKind = "download"
	AwaitInstall  AwaitingKind = "install"
)

// Progress descriptions shown to operators. Free text, never branched on.
const (
	DescQueryingVersion = "waiting to query version"
	DescDownloading     = "downloading"
	DescAwaitingIdle    = "waiting for device idle"
	DescUpdating        = "updating"
	DescUpdateSucceeded = "update succeeded"
	DescStopping        = "stopping"
)

type OTATask struct {
	ID        string
	Name      string
	PackageID string
	Package   *Package
	DeviceIDs []string
	Status    OTATaskStatus
	CreatedAt time.Time
}

// DeviceOTA is one device's participation in one task and the unit of
// state-machine transition.
type DeviceOTA struct {
	ID          string
	DeviceID    string
	TaskID      string
	Status      DeviceOTAStatus
	Awaiting    AwaitingKind
	Description string
	Path        string
}

type OTARepository interface {
	// CreateTask persists the task and its per-device records as one unit.
	CreateTask(task *OTATask, records []*DeviceOTA) error
	GetTaskByID(taskID string) (*OTATask, error)
	ListTasks() ([]*OTATask, error)
	SaveTask(task *OTATask) error

	GetDeviceOTAByID(id string) (*DeviceOTA, error)
	// GetDeviceOTAByDeviceAndStatus returns the device's participation whose
	// status is in the given set, or nil when there is none.
	GetDeviceOTAByDeviceAndStatus(deviceID string, statuses ...DeviceOTAStatus) (*DeviceOTA, error)
	// FindActiveByDeviceIDs returns every active participation held by any of
	// the given devices.
	FindActiveByDeviceIDs(deviceIDs []string) ([]*DeviceOTA, error)
	GetDeviceOTAsByTaskID(taskID string) ([]*DeviceOTA, error)
	GetDeviceOTAsByTaskAndStatus(taskID string, statuses ...DeviceOTAStatus) ([]*DeviceOTA, error)
	SaveDeviceOTA(record *DeviceOTA) error
	// CancelPendingByTaskID bulk-cancels every pending participation of the
	// task, clearing description and path. Returns the affected count.
	CancelPendingByTaskID(taskID string) (int64, error)
}
