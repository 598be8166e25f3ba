package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"catalog/internal/models"
)

// MockCatalogItemRepository is an in-memory implementation of
// CatalogItemRepository, used by service tests that care about real stock
// arithmetic rather than call expectations.
type MockCatalogItemRepository struct {
	items map[string]models.CatalogItem // keyed by slug
	mu    sync.RWMutex
}

// NewMockCatalogItemRepository creates a new instance of MockCatalogItemRepository.
func NewMockCatalogItemRepository() *MockCatalogItemRepository {
	return &MockCatalogItemRepository{
		items: make(map[string]models.CatalogItem),
	}
}

// GetAll returns all items ordered by name.
func (r *MockCatalogItemRepository) GetAll(ctx context.Context) ([]models.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.CatalogItem, 0, len(r.items))
	for _, it := range r.items {
		itemList = append(itemList, it)
	}
	sort.Slice(itemList, func(i, j int) bool { return itemList[i].Name < itemList[j].Name })
	return itemList, nil
}

// GetBySlug returns an item by its slug.
func (r *MockCatalogItemRepository) GetBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[slug]
	if !ok {
		return nil, fmt.Errorf("catalog item with slug %s: %w", slug, models.ErrItemNotFound)
	}
	return &item, nil
}

// SlugExists reports whether the slug is taken.
func (r *MockCatalogItemRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[slug]
	return ok, nil
}

// Create adds a new item.
func (r *MockCatalogItemRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.Slug] = *item
	return nil
}

// Update replaces an existing item.
func (r *MockCatalogItemRepository) Update(ctx context.Context, item *models.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.Slug]; !ok {
		return fmt.Errorf("catalog item %s: %w", item.Slug, models.ErrItemNotFound)
	}
	r.items[item.Slug] = *item
	return nil
}

// Delete removes an item by its slug.
func (r *MockCatalogItemRepository) Delete(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[slug]; !ok {
		return fmt.Errorf("catalog item %s: %w", slug, models.ErrItemNotFound)
	}
	delete(r.items, slug)
	return nil
}

// AddStockBatch applies all deltas atomically under the lock: if any slug is
// unknown, no delta is applied at all, mirroring the transactional GORM
// implementation.
func (r *MockCatalogItemRepository) AddStockBatch(ctx context.Context, deltas []models.StockDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		if _, ok := r.items[d.Slug]; !ok {
			return fmt.Errorf("catalog item %s: %w", d.Slug, models.ErrItemNotFound)
		}
	}
	for _, d := range deltas {
		item := r.items[d.Slug]
		item.AvailableStock += d.Stock
		r.items[d.Slug] = item
	}
	return nil
}
