package packagedto

type CreatePackageInput struct {
	Name        string
	Version     string
	Description string
	Entry       string
	FilePath    string
	ProcessPath string
	Size        int64
	MD5         string
	ProductID   string
}
