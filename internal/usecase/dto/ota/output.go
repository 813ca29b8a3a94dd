package otadto

import "time"

type TaskOutput struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PackageID      string    `json:"packageId"`
	PackageName    string    `json:"packageName,omitempty"`
	PackageVersion string    `json:"packageVersion,omitempty"`
	DeviceIDs      []string  `json:"deviceIds"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type DeviceOTAOutput struct {
	ID          string `json:"id"`
	DeviceID    string `json:"deviceId"`
	TaskID      string `json:"taskId"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Path        string `json:"path,omitempty"`
}
