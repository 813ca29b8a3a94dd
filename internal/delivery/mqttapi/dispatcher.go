package mqttapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
)

type topicCategory string

const (
	categoryTelemetry topicCategory = "telemetry"
	categoryProperty  topicCategory = "property"
	categoryOther     topicCategory = "other"
)

// Dispatcher drains the transport's inbound queue on a single consumer and
// routes each message: liveness refresh for every valid device message, OTA
// telemetry to the orchestrator's transition entry point, everything else to
// the pending-command check. Malformed payloads and unknown devices are
// dropped with a warning, never propagated.
type Dispatcher struct {
	transport domain.TransportPort
	devices   usecase.DeviceUsecase
	ota       usecase.OTAUsecase
	metrics   *metrics.OTAMetrics
}

func NewDispatcher(
	transport domain.TransportPort,
	devices usecase.DeviceUsecase,
	ota usecase.OTAUsecase,
	otaMetrics *metrics.OTAMetrics) *Dispatcher {

	return &Dispatcher{
		transport: transport,
		devices:   devices,
		ota:       ota,
		metrics:   otaMetrics,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-d.transport.Messages():
			if !ok {
				return
			}
			d.handle(msg)
		}
	}
}

// handle processes one inbound message. A panic while handling is contained
// here so one poisoned message cannot take the loop down.
func (d *Dispatcher) handle(msg domain.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling inbound message", "topic", msg.Topic, "panic", r)
		}
	}()

	category := classifyTopic(msg.Topic)
	d.metrics.InboundMessagesTotal.WithLabelValues(string(category)).Inc()

	switch category {
	case categoryTelemetry:
		d.handleTelemetry(msg)
	case categoryProperty:
		d.handleProperty(msg)
	}
}

func classifyTopic(topic string) topicCategory {
	switch {
	case strings.Contains(topic, domain.UpstreamTopicSuffix):
		return categoryTelemetry
	case strings.Contains(topic, domain.PropertyReportSuffix):
		return categoryProperty
	default:
		return categoryOther
	}
}

func (d *Dispatcher) handleTelemetry(msg domain.InboundMessage) {
	deviceID := domain.DeviceIDFromTopic(msg.Topic)
	if deviceID == "" {
		d.dropMalformed(msg.Topic, "no device id in topic")
		return
	}

	var report domain.TelemetryReport
	if err := json.Unmarshal(msg.Payload, &report); err != nil {
		d.dropMalformed(msg.Topic, "unparseable payload")
		return
	}

	device, err := d.devices.GetDeviceByDeviceID(deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			d.dropMalformed(msg.Topic, "unknown device")
		} else {
			slog.Error("device lookup failed", "device_id", deviceID, "error", err.Error())
		}
		return
	}

	// Every valid telemetry message refreshes liveness.
	if err := d.devices.TouchLiveness(deviceID); err != nil {
		slog.Error("failed to refresh device liveness", "device_id", deviceID, "error", err.Error())
	}

	if report.Type == domain.MessageTypeOTA {
		if err := d.ota.HandleTelemetry(device, &report); err != nil {
			slog.Error("failed to apply ota telemetry", "device_id", deviceID, "error", err.Error())
		}
		return
	}

	// Non-OTA telemetry: an idle device may have a rollout waiting for it.
	if err := d.ota.DispatchPendingCommand(device, report.Version); err != nil {
		slog.Error("pending command check failed", "device_id", deviceID, "error", err.Error())
	}
}

// handleProperty refreshes liveness for property reports; their payloads are
// handled by the property pipeline, not the orchestrator.
func (d *Dispatcher) handleProperty(msg domain.InboundMessage) {
	deviceID := domain.DeviceIDFromTopic(msg.Topic)
	if deviceID == "" {
		d.dropMalformed(msg.Topic, "no device id in topic")
		return
	}
	if !json.Valid(msg.Payload) {
		d.dropMalformed(msg.Topic, "unparseable payload")
		return
	}

	if err := d.devices.TouchLiveness(deviceID); err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			d.dropMalformed(msg.Topic, "unknown device")
			return
		}
		slog.Error("failed to refresh device liveness", "device_id", deviceID, "error", err.Error())
	}
}

func (d *Dispatcher) dropMalformed(topic, reason string) {
	d.metrics.MalformedDroppedTotal.Inc()
	slog.Warn("dropping inbound message", "topic", topic, "reason", reason)
}
