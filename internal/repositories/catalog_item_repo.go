package repositories

import (
	"context"

	"catalog/internal/models"
)

// CatalogItemRepository defines data access for catalog items. GetBySlug
// always loads the owned reminder collection: the aggregate is only useful
// with its reminds in place.
type CatalogItemRepository interface {
	GetAll(ctx context.Context) ([]models.CatalogItem, error)
	GetBySlug(ctx context.Context, slug string) (*models.CatalogItem, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, slug string) error

	// AddStockBatch applies every delta in one transaction, all-or-nothing.
	// A slug without a matching item fails the whole batch with
	// models.ErrItemNotFound and nothing is committed.
	AddStockBatch(ctx context.Context, deltas []models.StockDelta) error
}
