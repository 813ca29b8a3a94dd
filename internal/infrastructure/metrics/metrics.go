package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OTAMetrics holds the service counters for rollouts, telemetry handling and
// the transport path.
type OTAMetrics struct {
	// Inbound message flow
	InboundMessagesTotal  prometheus.CounterVec
	InboundDroppedTotal   prometheus.Counter
	MalformedDroppedTotal prometheus.Counter

	// State machine
	TelemetryTransitionsTotal prometheus.CounterVec
	TaskStatusChangesTotal    prometheus.CounterVec
	TasksCreatedTotal         prometheus.Counter

	// Device-bound commands
	CommandsPublishedTotal prometheus.CounterVec
	PublishFailuresTotal   prometheus.Counter

	// Liveness sweep
	DevicesMarkedOfflineTotal prometheus.Counter
}

func NewOTAMetrics() *OTAMetrics {
	return &OTAMetrics{
		InboundMessagesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ota_inbound_messages_total",
				Help: "Inbound device messages by topic category",
			},
			[]string{"category"},
		),

		InboundDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ota_inbound_dropped_total",
				Help: "Inbound messages dropped because the dispatch queue was full",
			},
		),

		MalformedDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ota_malformed_dropped_total",
				Help: "Inbound messages dropped as malformed or from unknown devices",
			},
		),

		TelemetryTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ota_telemetry_transitions_total",
				Help: "Applied device OTA transitions by reported status",
			},
			[]string{"reported_status", "new_status"},
		),

		TaskStatusChangesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ota_task_status_changes_total",
				Help: "OTA task aggregate status changes",
			},
			[]string{"status"},
		),

		TasksCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ota_tasks_created_total",
				Help: "OTA rollout tasks created",
			},
		),

		CommandsPublishedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ota_commands_published_total",
				Help: "Device-bound instructions published by kind",
			},
			[]string{"kind"},
		),

		PublishFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ota_publish_failures_total",
				Help: "Failed instruction publishes (state transition already committed)",
			},
		),

		DevicesMarkedOfflineTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ota_devices_marked_offline_total",
				Help: "Devices demoted to offline by the liveness sweep",
			},
		),
	}
}
