package devicedto

type CreateDeviceInput struct {
	Name      string
	Code      string
	DeviceID  string
	IPAddress string
	ProductID string
}
