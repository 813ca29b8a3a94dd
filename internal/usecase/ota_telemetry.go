package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mxvision/iothub-ota-service/internal/domain"
)

// Device-bound instruction payloads.
type downloadCommand struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Filename    string `json:"filename"`
	MD5         string `json:"md5"`
	Path        string `json:"path"`
	Entry       string `json:"entry"`
	ProcessPath string `json:"processPath"`
}

type startUpdateCommand struct {
	Type        string `json:"type"`
	Version     string `json:"version"`
	StartUpdate bool   `json:"startUpdate"`
	Path        string `json:"path"`
	Entry       string `json:"entry"`
	ProcessPath string `json:"processPath"`
}

type stopCommand struct {
	Type string `json:"type"`
	Stop bool   `json:"stop"`
}

// HandleTelemetry applies one device-reported OTA progress message to the
// device's participation record. A report whose precondition does not match
// the record's current status is ignored, so duplicate or out-of-order
// delivery is harmless.
func (uc *DefaultOTAUsecase) HandleTelemetry(device *domain.Device, report *domain.TelemetryReport) error {
	unlock := uc.locks.Lock(device.ID)
	defer unlock()

	var record *domain.DeviceOTA
	var oldStatus domain.DeviceOTAStatus
	var err error

	switch report.Status {
	case domain.ReportDownloading:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTAPending)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTARunning
			record.Awaiting = domain.AwaitNone
			record.Description = domain.DescDownloading
		}
	case domain.ReportDownloadSuccess:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTARunning)
		if record != nil {
			oldStatus = record.Status
			// Back to pending until the device reports idle and the
			// start-update instruction goes out.
			record.Status = domain.OTAPending
			record.Awaiting = domain.AwaitInstall
			record.Description = domain.DescAwaitingIdle
			record.Path = report.Path
		}
	case domain.ReportDownloadFailed:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTARunning)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTAFailed
			record.Awaiting = domain.AwaitNone
			record.Description = fmt.Sprintf("download failed: %s", report.Error)
		}
	case domain.ReportStartUpdate:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTAPending)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTARunning
			record.Awaiting = domain.AwaitNone
			record.Description = domain.DescUpdating
		}
	case domain.ReportUpdateSuccess:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTARunning, domain.OTAStopping)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTACompleted
			record.Awaiting = domain.AwaitNone
			record.Description = domain.DescUpdateSucceeded
			if device.Product == nil || device.Product.Type != domain.ProductTypeAgent {
				if verr := uc.DeviceRepo.UpdateDeviceVersion(device.DeviceID, report.Version); verr != nil {
					return verr
				}
			}
		}
	case domain.ReportUpdateFailed:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTARunning, domain.OTAStopping)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTAFailed
			record.Awaiting = domain.AwaitNone
			record.Description = fmt.Sprintf("update failed: %s", report.Error)
		}
	case domain.ReportUpdateStopped:
		record, err = uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTARunning, domain.OTAStopping)
		if record != nil {
			oldStatus = record.Status
			record.Status = domain.OTACanceled
			record.Awaiting = domain.AwaitNone
			record.Description = ""
			record.Path = ""
		}
	default:
		// Unknown reported status, not a fault.
		return nil
	}

	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	if err := uc.OTARepo.SaveDeviceOTA(record); err != nil {
		return err
	}

	uc.Metrics.TelemetryTransitionsTotal.WithLabelValues(report.Status, string(record.Status)).Inc()
	uc.emitTransition(record, oldStatus, "telemetry")

	return uc.refreshTaskStatus(record)
}

// DispatchPendingCommand checks whether the device's pending participation is
// waiting for an instruction and publishes it. Called when a device reports
// non-OTA telemetry: an idle device learns about a newly pending rollout this
// way. Publish failures are logged, not returned; the device re-reports and
// the check runs again.
func (uc *DefaultOTAUsecase) DispatchPendingCommand(device *domain.Device, reportedVersion string) error {
	record, err := uc.OTARepo.GetDeviceOTAByDeviceAndStatus(device.ID, domain.OTAPending)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	task, err := uc.OTARepo.GetTaskByID(record.TaskID)
	if err != nil {
		return err
	}
	if task.Package == nil || task.Package.Version == reportedVersion {
		// Device is already at the target version.
		return nil
	}

	topic := domain.DeviceDownstreamTopic(device.DeviceID)
	pkg := task.Package

	switch record.Awaiting {
	case domain.AwaitDownload:
		payload, err := json.Marshal(downloadCommand{
			Type:        domain.MessageTypeOTA,
			URL:         fmt.Sprintf("%s/api/packages/download/%s", uc.downloadBaseURL, pkg.ID),
			Version:     pkg.Version,
			Filename:    pkg.Name,
			MD5:         pkg.MD5,
			Path:        record.Path,
			Entry:       pkg.Entry,
			ProcessPath: pkg.ProcessPath,
		})
		if err != nil {
			return err
		}
		uc.publishCommand(device.DeviceID, topic, payload, "download")
	case domain.AwaitInstall:
		payload, err := json.Marshal(startUpdateCommand{
			Type:        domain.MessageTypeOTA,
			Version:     pkg.Version,
			StartUpdate: true,
			Path:        record.Path,
			Entry:       pkg.Entry,
			ProcessPath: pkg.ProcessPath,
		})
		if err != nil {
			return err
		}
		uc.publishCommand(device.DeviceID, topic, payload, "start_update")
	}

	return nil
}

// publishCommand publishes fire-and-forget: the transition that triggered the
// instruction is already committed, a failed publish only delays the device.
func (uc *DefaultOTAUsecase) publishCommand(deviceID, topic string, payload []byte, kind string) {
	if err := uc.Transport.Publish(topic, payload, uc.qos); err != nil {
		uc.Metrics.PublishFailuresTotal.Inc()
		slog.Error("failed to publish ota instruction", "kind", kind, "device_id", deviceID, "error", err.Error())
		return
	}
	uc.Metrics.CommandsPublishedTotal.WithLabelValues(kind).Inc()
	slog.Info("ota instruction published", "kind", kind, "device_id", deviceID)
}
