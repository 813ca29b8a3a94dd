package usecase

import (
	"errors"

	"github.com/mxvision/iothub-ota-service/internal/domain"
)

// adoptableStatuses are the just-changed statuses that may drag the task over
// under the two-distinct-value rule. A terminal straggler (completed/failed)
// deliberately does not: the task waits for the last device to resolve.
var adoptableStatuses = map[domain.DeviceOTAStatus]bool{
	domain.OTAPending:  true,
	domain.OTARunning:  true,
	domain.OTAStopping: true,
}

// refreshTaskStatus recomputes the owning task's aggregate status after one
// participation changed:
//   - all records share one status: the task adopts it;
//   - exactly two distinct statuses, every record but the changed one shares
//     the other value, and the changed status is pending/running/stopping:
//     the task adopts the changed status;
//   - more than two distinct statuses: ambiguous, left as-is until a later
//     transition resolves it.
func (uc *DefaultOTAUsecase) refreshTaskStatus(changed *domain.DeviceOTA) error {
	task, err := uc.OTARepo.GetTaskByID(changed.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil
		}
		return err
	}

	records, err := uc.OTARepo.GetDeviceOTAsByTaskID(changed.TaskID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	distinct := make(map[domain.DeviceOTAStatus]struct{})
	for _, record := range records {
		distinct[record.Status] = struct{}{}
	}

	switch len(distinct) {
	case 1:
		uniform := records[0].Status
		if task.Status != domain.OTATaskStatus(uniform) {
			return uc.setTaskStatus(task, domain.OTATaskStatus(uniform))
		}
	case 2:
		var other domain.DeviceOTAStatus
		for status := range distinct {
			if status != changed.Status {
				other = status
			}
		}
		othersUniform := true
		for _, record := range records {
			if record.ID == changed.ID {
				continue
			}
			if record.Status != other {
				othersUniform = false
				break
			}
		}
		if othersUniform &&
			task.Status != domain.OTATaskStatus(changed.Status) &&
			adoptableStatuses[changed.Status] {
			return uc.setTaskStatus(task, domain.OTATaskStatus(changed.Status))
		}
	}

	return nil
}

func (uc *DefaultOTAUsecase) setTaskStatus(task *domain.OTATask, status domain.OTATaskStatus) error {
	oldStatus := task.Status
	task.Status = status
	if err := uc.OTARepo.SaveTask(task); err != nil {
		return err
	}
	uc.Metrics.TaskStatusChangesTotal.WithLabelValues(string(status)).Inc()
	uc.emitTaskStatus(task, oldStatus)
	return nil
}
