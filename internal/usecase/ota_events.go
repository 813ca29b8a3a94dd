package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/kafka"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/logger"
)

// emitTransition records an applied participation transition in the audit log
// and publishes it to the event bus. Both are best-effort: the transition
// itself is already committed.
func (uc *DefaultOTAUsecase) emitTransition(record *domain.DeviceOTA, oldStatus domain.DeviceOTAStatus, source string) {
	now := time.Now()

	if uc.EventLog != nil {
		event := logger.DeviceOTATransitionEvent{
			TaskID:      record.TaskID,
			DeviceID:    record.DeviceID,
			DeviceOTAID: record.ID,
			OldStatus:   string(oldStatus),
			NewStatus:   string(record.Status),
			Description: record.Description,
			Source:      source,
			Timestamp:   now,
		}
		if err := uc.EventLog.LogTransition(context.Background(), event); err != nil {
			slog.Error("failed to log ota transition", "error", err.Error())
		}
	}

	if uc.Events != nil {
		go func(event kafka.OTAEvent) {
			if err := uc.Events.PublishOTAEvent(event); err != nil {
				slog.Error("failed to publish ota event", "stage", "transition", "error", err.Error())
			}
		}(kafka.OTAEvent{
			TaskID:      record.TaskID,
			DeviceID:    record.DeviceID,
			DeviceOTAID: record.ID,
			OldStatus:   string(oldStatus),
			NewStatus:   string(record.Status),
			Description: record.Description,
			Timestamp:   now,
		})
	}
}

func (uc *DefaultOTAUsecase) emitTaskStatus(task *domain.OTATask, oldStatus domain.OTATaskStatus) {
	now := time.Now()

	if uc.EventLog != nil {
		event := logger.TaskStatusEvent{
			TaskID:    task.ID,
			OldStatus: string(oldStatus),
			NewStatus: string(task.Status),
			Timestamp: now,
		}
		if err := uc.EventLog.LogTaskStatus(context.Background(), event); err != nil {
			slog.Error("failed to log task status change", "error", err.Error())
		}
	}

	if uc.Events != nil {
		go func(event kafka.OTAEvent) {
			if err := uc.Events.PublishOTAEvent(event); err != nil {
				slog.Error("failed to publish ota event", "stage", "aggregation", "error", err.Error())
			}
		}(kafka.OTAEvent{
			TaskID:     task.ID,
			TaskStatus: string(task.Status),
			OldStatus:  string(oldStatus),
			NewStatus:  string(task.Status),
			Timestamp:  now,
		})
	}
}
