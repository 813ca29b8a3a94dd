package domain

import "strings"

// Per-device topic layout. Devices report on the upstream topic and listen for
// instructions on the downstream one.
const (
	topicPrefix          = "/devices/"
	UpstreamTopicSuffix  = "/sys/messages/up"
	DownstreamSuffix     = "/sys/messages/down"
	PropertyReportSuffix = "/sys/properties/report"
)

func DeviceUpstreamTopic(deviceID string) string {
	return topicPrefix + deviceID + UpstreamTopicSuffix
}

func DeviceDownstreamTopic(deviceID string) string {
	return topicPrefix + deviceID + DownstreamSuffix
}

func DevicePropertyTopic(deviceID string) string {
	return topicPrefix + deviceID + PropertyReportSuffix
}

// DeviceIDFromTopic extracts the device identifier path segment, e.g.
// "/devices/abc123/sys/messages/up" -> "abc123".
func DeviceIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] != "devices" {
		return ""
	}
	return parts[2]
}
