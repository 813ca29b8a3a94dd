package repository

import (
	"errors"

	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/mappers"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultProductRepository struct {
	DB *gorm.DB
}

func NewDefaultProductRepository(db *gorm.DB) *DefaultProductRepository {
	return &DefaultProductRepository{
		DB: db,
	}
}

func (r *DefaultProductRepository) CreateProduct(product *domain.Product) error {
	return r.DB.Create(mappers.ToGORMProduct(product)).Error
}

func (r *DefaultProductRepository) GetProductByID(id string) (*domain.Product, error) {
	var productModel models.ProductModel
	if err := r.DB.First(&productModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return mappers.ToDomainProduct(&productModel), nil
}

func (r *DefaultProductRepository) ListProducts() ([]*domain.Product, error) {
	var productModels []*models.ProductModel
	if err := r.DB.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]*domain.Product, len(productModels))
	for i, productModel := range productModels {
		products[i] = mappers.ToDomainProduct(productModel)
	}

	return products, nil
}
