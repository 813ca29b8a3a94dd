package devicedto

import "time"

type DeviceOutput struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	DeviceID    string     `json:"deviceId"`
	IPAddress   string     `json:"ipAddress,omitempty"`
	ProductID   string     `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Status      string     `json:"status"`
	Version     string     `json:"version,omitempty"`
	LastSeen    *time.Time `json:"lastSeen,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
