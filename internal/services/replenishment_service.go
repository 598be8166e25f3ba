package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// ReplenishmentService consumes receipt-created events from the receiving
// system, applies the stock deltas and announces availability.
type ReplenishmentService struct {
	itemRepo  repositories.CatalogItemRepository
	publisher EventPublisher
}

// NewReplenishmentService creates a new ReplenishmentService.
func NewReplenishmentService(itemRepo repositories.CatalogItemRepository, publisher EventPublisher) *ReplenishmentService {
	return &ReplenishmentService{
		itemRepo:  itemRepo,
		publisher: publisher,
	}
}

// HandleReceiptCreated is the bus entry point: it decodes the payload and
// applies the batch. A returned error leaves the delivery to the transport's
// redelivery mechanism.
func (s *ReplenishmentService) HandleReceiptCreated(ctx context.Context, body []byte) error {
	var evt events.ReceiptCreatedEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to unmarshal receipt created event: %w", err)
	}
	return s.ApplyReceipt(ctx, evt)
}

// ApplyReceipt processes one replenishment batch. Entries are checked and
// applied to the in-memory aggregates in the order received; one unknown
// slug aborts the whole batch before anything is committed, so a malformed
// or stale batch never half-applies. All deltas land in a single
// transactional commit, and only after that commit succeeds is the
// StockAvailableEvent published with every slug from the batch.
//
// Redelivery of the same batch applies the deltas again; downstream
// consumers treat StockAvailableEvent as a "check now" signal, not a stock
// ledger, so the replay is tolerated rather than deduplicated.
func (s *ReplenishmentService) ApplyReceipt(ctx context.Context, evt events.ReceiptCreatedEvent) error {
	if len(evt.Items) == 0 {
		return fmt.Errorf("%w: receipt batch has no items", models.ErrInvalidItem)
	}

	deltas := make([]models.StockDelta, 0, len(evt.Items))
	slugs := make([]string, 0, len(evt.Items))
	for _, entry := range evt.Items {
		item, err := s.itemRepo.GetBySlug(ctx, entry.Slug)
		if err != nil {
			log.Printf("Warning: catalog item with slug %s not found, aborting receipt batch", entry.Slug)
			return err
		}
		if err := item.AddStock(entry.Stock); err != nil {
			return fmt.Errorf("receipt entry %s: %w", entry.Slug, err)
		}
		deltas = append(deltas, models.StockDelta{Slug: entry.Slug, Stock: entry.Stock})
		slugs = append(slugs, entry.Slug)
	}

	if err := s.itemRepo.AddStockBatch(ctx, deltas); err != nil {
		return fmt.Errorf("failed to commit receipt batch: %w", err)
	}

	available := events.StockAvailableEvent{Slugs: slugs}
	body, err := json.Marshal(available)
	if err != nil {
		return fmt.Errorf("failed to marshal stock available event: %w", err)
	}
	if err := s.publisher.Publish(events.QueueStockAvailable, body); err != nil {
		return fmt.Errorf("failed to publish stock available event: %w", err)
	}

	log.Printf("Applied receipt batch for %d items: %v", len(slugs), slugs)
	return nil
}
