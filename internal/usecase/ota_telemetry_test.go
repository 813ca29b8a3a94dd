package usecase

import (
	"encoding/json"
	"testing"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTAUsecase() (*DefaultOTAUsecase, *fakeOTARepo, *fakeDeviceRepo, *fakePackageRepo, *fakeTransport) {
	otaRepo := newFakeOTARepo()
	deviceRepo := newFakeDeviceRepo()
	packageRepo := newFakePackageRepo()
	transport := newFakeTransport()
	uc := NewDefaultOTAUsecase(
		otaRepo, deviceRepo, packageRepo, transport,
		nil, nil, testMetrics,
		"http://10.211.55.3:5000", 1,
	)
	return uc, otaRepo, deviceRepo, packageRepo, transport
}

func seedDevice(repo *fakeDeviceRepo, id, deviceID string, product *domain.Product) *domain.Device {
	device := &domain.Device{
		ID:       id,
		Name:     "edge-" + deviceID,
		DeviceID: deviceID,
		Status:   domain.DeviceOnline,
		Version:  "1.0.0",
		Product:  product,
	}
	if product != nil {
		device.ProductID = product.ID
	}
	_ = repo.CreateDevice(device)
	return device
}

func seedRecord(repo *fakeOTARepo, id, deviceID, taskID string, status domain.DeviceOTAStatus, awaiting domain.AwaitingKind) *domain.DeviceOTA {
	record := &domain.DeviceOTA{
		ID:       id,
		DeviceID: deviceID,
		TaskID:   taskID,
		Status:   status,
		Awaiting: awaiting,
	}
	_ = repo.SaveDeviceOTA(record)
	return record
}

func TestHandleTelemetryTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initial      domain.DeviceOTAStatus
		report       *domain.TelemetryReport
		wantStatus   domain.DeviceOTAStatus
		wantAwaiting domain.AwaitingKind
		wantPath     string
	}{
		{
			name:         "downloading moves pending to running",
			initial:      domain.OTAPending,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportDownloading},
			wantStatus:   domain.OTARunning,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "download success parks the record for install",
			initial:      domain.OTARunning,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportDownloadSuccess, Path: "/opt/pkg/fw.tar.gz"},
			wantStatus:   domain.OTAPending,
			wantAwaiting: domain.AwaitInstall,
			wantPath:     "/opt/pkg/fw.tar.gz",
		},
		{
			name:         "download failed moves running to failed",
			initial:      domain.OTARunning,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportDownloadFailed, Error: "no space left"},
			wantStatus:   domain.OTAFailed,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "start update moves pending to running",
			initial:      domain.OTAPending,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportStartUpdate},
			wantStatus:   domain.OTARunning,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "update success completes a running record",
			initial:      domain.OTARunning,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateSuccess, Version: "2.0.0"},
			wantStatus:   domain.OTACompleted,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "update success completes a stopping record",
			initial:      domain.OTAStopping,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateSuccess, Version: "2.0.0"},
			wantStatus:   domain.OTACompleted,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "update failed moves running to failed",
			initial:      domain.OTARunning,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateFailed, Error: "flash verify"},
			wantStatus:   domain.OTAFailed,
			wantAwaiting: domain.AwaitNone,
		},
		{
			name:         "update stopped cancels a stopping record",
			initial:      domain.OTAStopping,
			report:       &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateStopped},
			wantStatus:   domain.OTACanceled,
			wantAwaiting: domain.AwaitNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
			device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
			seedRecord(otaRepo, "dota-1", device.ID, "task-1", tt.initial, domain.AwaitNone)

			require.NoError(t, uc.HandleTelemetry(device, tt.report))

			record, err := otaRepo.GetDeviceOTAByID("dota-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, record.Status)
			assert.Equal(t, tt.wantAwaiting, record.Awaiting)
			assert.Equal(t, tt.wantPath, record.Path)
		})
	}
}

func TestHandleTelemetryPreconditionMismatchIsNoOp(t *testing.T) {
	uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitDownload)

	// "update success" requires running or stopping; the record is pending.
	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateSuccess, Version: "2.0.0"}
	require.NoError(t, uc.HandleTelemetry(device, report))

	record, err := otaRepo.GetDeviceOTAByID("dota-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OTAPending, record.Status)
	assert.Empty(t, deviceRepo.versions, "device version must not change on a rejected report")
}

func TestHandleTelemetryDuplicateReportIsIdempotent(t *testing.T) {
	uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitDownload)

	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportDownloading}
	require.NoError(t, uc.HandleTelemetry(device, report))
	// Redelivered: the record is already running, the pending precondition
	// no longer holds.
	require.NoError(t, uc.HandleTelemetry(device, report))

	record, err := otaRepo.GetDeviceOTAByID("dota-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OTARunning, record.Status)
	assert.Equal(t, domain.DescDownloading, record.Description)
}

func TestHandleTelemetryWithoutParticipationIsNoOp(t *testing.T) {
	uc, _, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)

	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportDownloading}
	require.NoError(t, uc.HandleTelemetry(device, report))
}

func TestHandleTelemetryUnknownStatusIgnored(t *testing.T) {
	uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitDownload)

	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: "rebooting"}
	require.NoError(t, uc.HandleTelemetry(device, report))

	record, err := otaRepo.GetDeviceOTAByID("dota-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OTAPending, record.Status)
}

func TestHandleTelemetryUpdateSuccessWritesDeviceVersion(t *testing.T) {
	uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", &domain.Product{ID: "prod-1", Type: "gateway"})
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTARunning, domain.AwaitNone)

	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateSuccess, Version: "2.0.0"}
	require.NoError(t, uc.HandleTelemetry(device, report))

	assert.Equal(t, "2.0.0", deviceRepo.versions["mqtt-dev-1"])
}

func TestHandleTelemetryUpdateSuccessSkipsVersionForAgentProduct(t *testing.T) {
	uc, otaRepo, deviceRepo, _, _ := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", &domain.Product{ID: "prod-1", Type: domain.ProductTypeAgent})
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTARunning, domain.AwaitNone)

	report := &domain.TelemetryReport{Type: domain.MessageTypeOTA, Status: domain.ReportUpdateSuccess, Version: "2.0.0"}
	require.NoError(t, uc.HandleTelemetry(device, report))

	record, err := otaRepo.GetDeviceOTAByID("dota-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OTACompleted, record.Status)
	assert.Empty(t, deviceRepo.versions)
}

func seedTaskWithPackage(otaRepo *fakeOTARepo, pkgRepo *fakePackageRepo, taskID string, pkg *domain.Package, deviceIDs ...string) {
	_ = pkgRepo.CreatePackage(pkg)
	task := &domain.OTATask{
		ID:        taskID,
		Name:      "rollout " + pkg.Version,
		PackageID: pkg.ID,
		Package:   pkg,
		DeviceIDs: deviceIDs,
		Status:    domain.TaskPending,
	}
	_ = otaRepo.SaveTask(task)
}

func firmwarePackage() *domain.Package {
	return &domain.Package{
		ID:          "pkg-1",
		Name:        "edge-fw.tar.gz",
		Version:     "2.0.0",
		Entry:       "main.py",
		ProcessPath: "/opt/app",
		MD5:         "d41d8cd98f00b204e9800998ecf8427e",
		ProductID:   "prod-1",
	}
}

func TestDispatchPendingCommandPublishesDownload(t *testing.T) {
	uc, otaRepo, deviceRepo, pkgRepo, transport := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedTaskWithPackage(otaRepo, pkgRepo, "task-1", firmwarePackage(), device.ID)
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitDownload)

	require.NoError(t, uc.DispatchPendingCommand(device, "1.0.0"))

	published := transport.publishedMessages()
	require.Len(t, published, 1)
	assert.Equal(t, "/devices/mqtt-dev-1/sys/messages/down", published[0].Topic)
	assert.Equal(t, byte(1), published[0].QoS)

	var cmd downloadCommand
	require.NoError(t, json.Unmarshal(published[0].Payload, &cmd))
	assert.Equal(t, domain.MessageTypeOTA, cmd.Type)
	assert.Equal(t, "http://10.211.55.3:5000/api/packages/download/pkg-1", cmd.URL)
	assert.Equal(t, "2.0.0", cmd.Version)
	assert.Equal(t, "edge-fw.tar.gz", cmd.Filename)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", cmd.MD5)
}

func TestDispatchPendingCommandPublishesStartUpdate(t *testing.T) {
	uc, otaRepo, deviceRepo, pkgRepo, transport := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedTaskWithPackage(otaRepo, pkgRepo, "task-1", firmwarePackage(), device.ID)
	record := seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitInstall)
	record.Path = "/opt/pkg/fw.tar.gz"
	require.NoError(t, otaRepo.SaveDeviceOTA(record))

	require.NoError(t, uc.DispatchPendingCommand(device, "1.0.0"))

	published := transport.publishedMessages()
	require.Len(t, published, 1)

	var cmd startUpdateCommand
	require.NoError(t, json.Unmarshal(published[0].Payload, &cmd))
	assert.True(t, cmd.StartUpdate)
	assert.Equal(t, "2.0.0", cmd.Version)
	assert.Equal(t, "/opt/pkg/fw.tar.gz", cmd.Path)
	assert.Equal(t, "main.py", cmd.Entry)
}

func TestDispatchPendingCommandSkipsWhenAlreadyAtTargetVersion(t *testing.T) {
	uc, otaRepo, deviceRepo, pkgRepo, transport := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)
	seedTaskWithPackage(otaRepo, pkgRepo, "task-1", firmwarePackage(), device.ID)
	seedRecord(otaRepo, "dota-1", device.ID, "task-1", domain.OTAPending, domain.AwaitDownload)

	require.NoError(t, uc.DispatchPendingCommand(device, "2.0.0"))
	assert.Empty(t, transport.publishedMessages())
}

func TestDispatchPendingCommandWithoutPendingRecord(t *testing.T) {
	uc, _, deviceRepo, _, transport := newTestOTAUsecase()
	device := seedDevice(deviceRepo, "dev-1", "mqtt-dev-1", nil)

	require.NoError(t, uc.DispatchPendingCommand(device, "1.0.0"))
	assert.Empty(t, transport.publishedMessages())
}
