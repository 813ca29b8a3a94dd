package repository

import (
	"errors"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/mappers"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPackageRepository struct {
	DB *gorm.DB
}

func NewDefaultPackageRepository(db *gorm.DB) *DefaultPackageRepository {
	return &DefaultPackageRepository{
		DB: db,
	}
}

func (r *DefaultPackageRepository) CreatePackage(pkg *domain.Package) error {
	return r.DB.Create(mappers.ToGORMPackage(pkg)).Error
}

func (r *DefaultPackageRepository) GetPackageByID(id string) (*domain.Package, error) {
	var packageModel models.PackageModel
	if err := r.DB.First(&packageModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPackage(&packageModel), nil
}

func (r *DefaultPackageRepository) GetActiveByProductAndVersion(productID, version string) (*domain.Package, error) {
	var packageModel models.PackageModel
	err := r.DB.
		Where("product_id = ? AND version = ? AND is_deleted = ?", productID, version, false).
		First(&packageModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainPackage(&packageModel), nil
}

func (r *DefaultPackageRepository) ListPackages() ([]*domain.Package, error) {
	var packageModels []*models.PackageModel
	if err := r.DB.Where("is_deleted = ?", false).Find(&packageModels).Error; err != nil {
		return nil, err
	}

	packages := make([]*domain.Package, len(packageModels))
	for i, packageModel := range packageModels {
		packages[i] = mappers.ToDomainPackage(packageModel)
	}

	return packages, nil
}

func (r *DefaultPackageRepository) MarkDeleted(id string) error {
	result := r.DB.Model(&models.PackageModel{}).Where("id = ?", id).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}
