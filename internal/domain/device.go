package domain

import "time"

type DeviceStatus string

const (
	DeviceOnline      DeviceStatus = "online"
	DeviceOffline     DeviceStatus = "offline"
	DeviceMaintenance DeviceStatus = "maintenance"
	DeviceUnactivated DeviceStatus = "unactivated"
)

// ProductTypeAgent marks agent-relay products. Devices of such products report
// their own version; the platform never overwrites it after an upgrade.
const ProductTypeAgent = "Agent"

type Product struct {
	ID       string
	Name     string
	Protocol string
	Type     string
	Status   int
	Remark   string

	CreatedAt time.Time
}

type Device struct {
	ID        string
	Name      string
	Code      string
	DeviceID  string
	IPAddress string
	ProductID string
	Product   *Product

	Status   DeviceStatus
	Version  string
	LastSeen *time.Time

	IsDeleted bool
	CreatedAt time.Time
}

type DeviceRepository interface {
	CreateDevice(device *Device) error
	GetDeviceByID(id string) (*Device, error)
	// GetDeviceByDeviceID resolves a device by its transport identity and
	// preloads the owning product.
	GetDeviceByDeviceID(deviceID string) (*Device, error)
	ListDevices() ([]*Device, error)
	SaveDevice(device *Device) error
	UpdateDeviceLiveness(deviceID string, seenAt time.Time) error
	// MarkDevicesOffline demotes every online device whose last-seen timestamp
	// is older than threshold, or was never set. Returns the demoted count.
	MarkDevicesOffline(threshold time.Time) (int64, error)
	UpdateDeviceVersion(deviceID string, version string) error
}

type ProductRepository interface {
	CreateProduct(product *Product) error
	GetProductByID(id string) (*Product, error)
	ListProducts() ([]*Product, error)
}
