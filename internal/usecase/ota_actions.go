package usecase

import (
	"encoding/json"
	"log/slog"

	"github.com/mxvision/iothub-ota-service/internal/domain"
)

// RetryDeviceOTA resets a finished participation back to the start of the
// state machine. Only terminal records may be retried, and never against a
// soft-deleted package.
func (uc *DefaultOTAUsecase) RetryDeviceOTA(deviceOTAID string) error {
	record, err := uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}

	task, err := uc.OTARepo.GetTaskByID(record.TaskID)
	if err != nil {
		return err
	}
	pkg, err := uc.PackageRepo.GetPackageByID(task.PackageID)
	if err != nil {
		return err
	}
	if pkg.IsDeleted {
		return domain.ErrPackageDeleted
	}

	unlock := uc.locks.Lock(record.DeviceID)
	defer unlock()

	// Re-read under the lock: a racing action may have moved the record.
	record, err = uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}
	if !record.Status.Terminal() {
		return domain.ErrStillActive
	}

	oldStatus := record.Status
	record.Status = domain.OTAPending
	record.Awaiting = domain.AwaitDownload
	record.Description = domain.DescQueryingVersion
	record.Path = ""
	if err := uc.OTARepo.SaveDeviceOTA(record); err != nil {
		return err
	}

	uc.emitTransition(record, oldStatus, "operator")
	return uc.refreshTaskStatus(record)
}

// StopDeviceOTA stops a single participation. A running device gets a stop
// instruction and waits in stopping; a device that has not started yet is
// canceled outright with nothing to signal. Terminal records are rejected.
func (uc *DefaultOTAUsecase) StopDeviceOTA(deviceOTAID string) error {
	record, err := uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}

	unlock := uc.locks.Lock(record.DeviceID)
	defer unlock()

	record, err = uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}
	if record.Status.Terminal() {
		return domain.ErrAlreadyTerminal
	}

	oldStatus := record.Status
	if record.Status == domain.OTARunning {
		record.Status = domain.OTAStopping
		record.Awaiting = domain.AwaitNone
		record.Description = domain.DescStopping
		if err := uc.OTARepo.SaveDeviceOTA(record); err != nil {
			return err
		}
		uc.publishStop(record.DeviceID)
	} else {
		record.Status = domain.OTACanceled
		record.Awaiting = domain.AwaitNone
		record.Description = ""
		record.Path = ""
		if err := uc.OTARepo.SaveDeviceOTA(record); err != nil {
			return err
		}
	}

	uc.emitTransition(record, oldStatus, "operator")
	return uc.refreshTaskStatus(record)
}

// StopTask stops every non-terminal participant in bulk. Pending records are
// canceled in one statement; running ones move to stopping and get the stop
// instruction. The task lands on stopping when anything was running, else on
// canceled.
func (uc *DefaultOTAUsecase) StopTask(taskID string) error {
	task, err := uc.OTARepo.GetTaskByID(taskID)
	if err != nil {
		return err
	}

	canceledCount, err := uc.OTARepo.CancelPendingByTaskID(taskID)
	if err != nil {
		return err
	}

	running, err := uc.OTARepo.GetDeviceOTAsByTaskAndStatus(taskID, domain.OTARunning)
	if err != nil {
		return err
	}

	stoppedCount := 0
	for _, record := range running {
		if err := uc.stopRunningRecord(record.ID); err != nil {
			slog.Error("failed to stop running device ota", "device_ota_id", record.ID, "error", err.Error())
			continue
		}
		stoppedCount++
	}

	if canceledCount > 0 || stoppedCount > 0 {
		status := domain.TaskCanceled
		if stoppedCount > 0 {
			status = domain.TaskStopping
		}
		if task.Status != status {
			return uc.setTaskStatus(task, status)
		}
	}
	return nil
}

func (uc *DefaultOTAUsecase) stopRunningRecord(deviceOTAID string) error {
	record, err := uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}

	unlock := uc.locks.Lock(record.DeviceID)
	defer unlock()

	record, err = uc.OTARepo.GetDeviceOTAByID(deviceOTAID)
	if err != nil {
		return err
	}
	if record.Status != domain.OTARunning {
		return nil
	}

	oldStatus := record.Status
	record.Status = domain.OTAStopping
	record.Awaiting = domain.AwaitNone
	record.Description = domain.DescStopping
	if err := uc.OTARepo.SaveDeviceOTA(record); err != nil {
		return err
	}
	uc.publishStop(record.DeviceID)
	uc.emitTransition(record, oldStatus, "operator")
	return nil
}

// publishStop tells the device to abort its in-flight upgrade.
func (uc *DefaultOTAUsecase) publishStop(deviceRecordID string) {
	device, err := uc.DeviceRepo.GetDeviceByID(deviceRecordID)
	if err != nil {
		slog.Error("failed to resolve device for stop instruction", "id", deviceRecordID, "error", err.Error())
		return
	}
	payload, err := json.Marshal(stopCommand{Type: domain.MessageTypeOTA, Stop: true})
	if err != nil {
		slog.Error("failed to marshal stop instruction", "error", err.Error())
		return
	}
	uc.publishCommand(device.DeviceID, domain.DeviceDownstreamTopic(device.DeviceID), payload, "stop")
}
