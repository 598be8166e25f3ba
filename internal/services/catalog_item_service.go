package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// EventPublisher is the slice of the message-bus client the services need.
// pkg/rabbitmq.Client satisfies it; tests substitute mocks.
type EventPublisher interface {
	Publish(queue string, body []byte) error
}

// CatalogItemService handles business logic for catalog items: CRUD plus the
// item added/changed integration events downstream projections listen for.
type CatalogItemService struct {
	itemRepo     repositories.CatalogItemRepository
	brandRepo    repositories.BrandRepository
	categoryRepo repositories.CategoryRepository
	publisher    EventPublisher
	baseURL      string
}

// NewCatalogItemService creates a new CatalogItemService. baseURL is the
// public prefix for item detail URLs embedded in integration events.
func NewCatalogItemService(
	itemRepo repositories.CatalogItemRepository,
	brandRepo repositories.BrandRepository,
	categoryRepo repositories.CategoryRepository,
	publisher EventPublisher,
	baseURL string,
) *CatalogItemService {
	return &CatalogItemService{
		itemRepo:     itemRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		baseURL:      baseURL,
	}
}

// GetAllItems retrieves all catalog items.
func (s *CatalogItemService) GetAllItems(ctx context.Context) ([]models.CatalogItem, error) {
	return s.itemRepo.GetAll(ctx)
}

// GetItemBySlug retrieves a single catalog item by its slug.
func (s *CatalogItemService) GetItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	return s.itemRepo.GetBySlug(ctx, slug)
}

// CreateItem validates the brand and category references, derives the slug,
// persists the item and announces it on the bus.
func (s *CatalogItemService) CreateItem(ctx context.Context, name, description string, price float64, maxStockThreshold int, brandID, categoryID string) (*models.CatalogItem, error) {
	brand, err := s.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	taken, err := s.itemRepo.SlugExists(ctx, models.ToKebabCase(name))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("slug %s: %w", models.ToKebabCase(name), models.ErrSlugTaken)
	}

	item, err := models.NewCatalogItem(name, description, price, maxStockThreshold, brandID, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}

	s.publishItemEvent(events.ItemAdded, item, brand.Name, category.Name)
	return item, nil
}

// UpdateItem applies a partial update of the mutable fields and announces
// the change. Name, slug and stock are untouched.
func (s *CatalogItemService) UpdateItem(ctx context.Context, slug, description string, price float64, brandID, categoryID string) (*models.CatalogItem, error) {
	item, err := s.itemRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	brand, err := s.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if err := item.UpdateDetails(description, price, brandID, categoryID); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update catalog item %s: %w", slug, err)
	}

	s.publishItemEvent(events.ItemChanged, item, brand.Name, category.Name)
	return item, nil
}

// SetMaxStockThreshold updates the reorder threshold for an item.
func (s *CatalogItemService) SetMaxStockThreshold(ctx context.Context, slug string, value int) error {
	item, err := s.itemRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := item.SetMaxStockThreshold(value); err != nil {
		return err
	}
	return s.itemRepo.Update(ctx, item)
}

// DeleteItem removes an item and its owned reminds.
func (s *CatalogItemService) DeleteItem(ctx context.Context, slug string) error {
	return s.itemRepo.Delete(ctx, slug)
}

// publishItemEvent emits an item added/changed event. Publication failures
// are logged, not surfaced: the item write already committed and listing
// projections recover on the next change.
func (s *CatalogItemService) publishItemEvent(eventType string, item *models.CatalogItem, brandName, categoryName string) {
	if s.publisher == nil {
		return
	}

	evt := events.CatalogItemEvent{
		Event:       eventType,
		Name:        item.Name,
		Description: item.Description,
		Brand:       brandName,
		Category:    categoryName,
		Slug:        item.Slug,
		DetailURL:   fmt.Sprintf("%s/api/v1/items/%s", s.baseURL, item.Slug),
		OccurredAt:  time.Now().UTC(),
	}
	body, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Failed to marshal %s event for %s: %v", eventType, item.Slug, err)
		return
	}
	if err := s.publisher.Publish(events.QueueItemEvents, body); err != nil {
		log.Printf("Warning: failed to publish %s event for %s: %v", eventType, item.Slug, err)
	}
}
