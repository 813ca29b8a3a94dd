package mappers

import (
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
)

func ToGORMPackage(pkg *domain.Package) *models.PackageModel {
	return &models.PackageModel{
		ID:          pkg.ID,
		Name:        pkg.Name,
		Version:     pkg.Version,
		Description: pkg.Description,
		Entry:       pkg.Entry,
		FilePath:    pkg.FilePath,
		ProcessPath: pkg.ProcessPath,
		Size:        pkg.Size,
		MD5:         pkg.MD5,
		ProductID:   pkg.ProductID,
		IsDeleted:   pkg.IsDeleted,
		CreatedAt:   pkg.CreatedAt,
	}
}

func ToDomainPackage(model *models.PackageModel) *domain.Package {
	return &domain.Package{
		ID:          model.ID,
		Name:        model.Name,
		Version:     model.Version,
		Description: model.Description,
		Entry:       model.Entry,
		FilePath:    model.FilePath,
		ProcessPath: model.ProcessPath,
		Size:        model.Size,
		MD5:         model.MD5,
		ProductID:   model.ProductID,
		IsDeleted:   model.IsDeleted,
		CreatedAt:   model.CreatedAt,
	}
}
