package kafka

import "time"

// OTAEvent is the lifecycle event emitted for every device participation
// transition and task status change.
type OTAEvent struct {
	TaskID      string    `json:"task_id"`
	TaskStatus  string    `json:"task_status,omitempty"`
	DeviceID    string    `json:"device_id,omitempty"`
	DeviceOTAID string    `json:"device_ota_id,omitempty"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
