package repositories

import (
	"context"

	"catalog/internal/models"
)

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	GetAll(ctx context.Context) ([]models.Brand, error)
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}
