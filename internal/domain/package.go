package domain

import "time"

// Package is an upgrade artifact. Immutable once created except for the
// soft-delete flag.
type Package struct {
	ID          string
	Name        string
	Version     string
	Description string
	Entry       string
	FilePath    string
	ProcessPath string
	Size        int64
	MD5         string
	ProductID   string

	IsDeleted bool
	CreatedAt time.Time
}

type PackageRepository interface {
	CreatePackage(pkg *Package) error
	GetPackageByID(id string) (*Package, error)
	// GetActiveByProductAndVersion returns the non-deleted package of the
	// product at the given version, or nil when there is none.
	GetActiveByProductAndVersion(productID, version string) (*Package, error)
	ListPackages() ([]*Package, error)
	MarkDeleted(id string) error
}
