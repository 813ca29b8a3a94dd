package domain

// MessageTypeOTA marks payloads belonging to the OTA exchange, both inbound
// telemetry and outbound instructions.
const MessageTypeOTA = "OTA"

// Device-reported OTA progress statuses.
const (
	ReportDownloading     = "downloading"
	ReportDownloadSuccess = "download success"
	ReportDownloadFailed  = "download failed"
	ReportStartUpdate     = "start update"
	ReportUpdateSuccess   = "update success"
	ReportUpdateFailed    = "update failed"
	ReportUpdateStopped   = "update stopped"
)

// TelemetryReport is the inbound device message. Devices may resend the same
// report; processing is idempotent.
type TelemetryReport struct {
	Type    string `json:"type,omitempty"`
	Status  string `json:"status,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
	Path    string `json:"path,omitempty"`
}
