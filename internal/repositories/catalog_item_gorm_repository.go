package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog/internal/models"
)

// GORMCatalogItemRepository is a GORM implementation of CatalogItemRepository.
type GORMCatalogItemRepository struct {
	db *gorm.DB
}

// NewGORMCatalogItemRepository creates a new instance of GORMCatalogItemRepository.
func NewGORMCatalogItemRepository(db *gorm.DB) *GORMCatalogItemRepository {
	return &GORMCatalogItemRepository{
		db: db,
	}
}

// GetAll retrieves all catalog items ordered by name.
func (r *GORMCatalogItemRepository) GetAll(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := r.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all catalog items: %w", err)
	}
	return items, nil
}

// GetBySlug retrieves a single catalog item with its reminds preloaded.
func (r *GORMCatalogItemRepository) GetBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.WithContext(ctx).Preload("Reminds").First(&item, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog item with slug %s: %w", slug, models.ErrItemNotFound)
		}
		return nil, fmt.Errorf("failed to get catalog item by slug %s: %w", slug, err)
	}
	return &item, nil
}

// SlugExists reports whether any item already claims the slug.
func (r *GORMCatalogItemRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CatalogItem{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug %s: %w", slug, err)
	}
	return count > 0, nil
}

// Create inserts a new catalog item.
func (r *GORMCatalogItemRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create catalog item: %w", err)
	}
	return nil
}

// Update saves the item and any newly appended reminds in one transaction.
func (r *GORMCatalogItemRepository) Update(ctx context.Context, item *models.CatalogItem) error {
	res := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update catalog item %s: %w", item.Slug, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("catalog item %s: %w", item.Slug, models.ErrItemNotFound)
	}
	return nil
}

// Delete removes a catalog item by slug; owned reminds cascade.
func (r *GORMCatalogItemRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.CatalogItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete catalog item %s: %w", slug, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("catalog item %s: %w", slug, models.ErrItemNotFound)
	}
	return nil
}

// AddStockBatch applies the deltas as in-place increments inside a single
// transaction. The increments run against the current row value, so two
// concurrent batches touching the same item both land at read-committed
// isolation without a lost update and without an application-level retry
// loop. Any unknown slug rolls the whole batch back.
func (r *GORMCatalogItemRepository) AddStockBatch(ctx context.Context, deltas []models.StockDelta) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range deltas {
			res := tx.Model(&models.CatalogItem{}).
				Where("slug = ?", d.Slug).
				UpdateColumn("available_stock", gorm.Expr("available_stock + ?", d.Stock))
			if res.Error != nil {
				return fmt.Errorf("failed to add stock for %s: %w", d.Slug, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("catalog item %s: %w", d.Slug, models.ErrItemNotFound)
			}
		}
		return nil
	})
}
