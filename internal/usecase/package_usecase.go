package usecase

import (
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	packagedto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/pkg"
)

type PackageUsecase interface {
	CreatePackage(input *packagedto.CreatePackageInput) (*domain.Package, error)
	GetPackageByID(id string) (*domain.Package, error)
	ListPackages() ([]*domain.Package, error)
	DeletePackage(id string) error
}

type DefaultPackageUsecase struct {
	packageRepo domain.PackageRepository
	productRepo domain.ProductRepository
}

func NewDefaultPackageUsecase(packageRepo domain.PackageRepository, productRepo domain.ProductRepository) *DefaultPackageUsecase {
	return &DefaultPackageUsecase{
		packageRepo: packageRepo,
		productRepo: productRepo,
	}
}

// CreatePackage registers an upgrade artifact. Per product only one
// non-deleted package may exist per version.
func (uc *DefaultPackageUsecase) CreatePackage(input *packagedto.CreatePackageInput) (*domain.Package, error) {
	if _, err := uc.productRepo.GetProductByID(input.ProductID); err != nil {
		return nil, err
	}

	existing, err := uc.packageRepo.GetActiveByProductAndVersion(input.ProductID, input.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrPackageExists
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	entry := input.Entry
	if entry == "" {
		entry = "main.py"
	}
	pkg := &domain.Package{
		ID:          idGenerator(),
		Name:        input.Name,
		Version:     input.Version,
		Description: input.Description,
		Entry:       entry,
		FilePath:    input.FilePath,
		ProcessPath: input.ProcessPath,
		Size:        input.Size,
		MD5:         input.MD5,
		ProductID:   input.ProductID,
		CreatedAt:   time.Now(),
	}
	if err := uc.packageRepo.CreatePackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (uc *DefaultPackageUsecase) GetPackageByID(id string) (*domain.Package, error) {
	return uc.packageRepo.GetPackageByID(id)
}

func (uc *DefaultPackageUsecase) ListPackages() ([]*domain.Package, error) {
	return uc.packageRepo.ListPackages()
}

// DeletePackage soft-deletes; the artifact row stays for audit and for tasks
// that already reference it.
func (uc *DefaultPackageUsecase) DeletePackage(id string) error {
	return uc.packageRepo.MarkDeleted(id)
}
