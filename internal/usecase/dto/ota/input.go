package otadto

type CreateTaskInput struct {
	Name      string
	PackageID string
	DeviceIDs []string
}
