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

// LinkShortener shortens a detail URL for embedding in a notification body.
// pkg/shortener.QuickLinker satisfies it.
type LinkShortener interface {
	GetShortURL(ctx context.Context, longURL string) (string, error)
}

// ReminderService registers "remind me when available" requests on
// out-of-stock items and fans the rendered notification out on the bus.
type ReminderService struct {
	itemRepo  repositories.CatalogItemRepository
	shortener LinkShortener
	publisher EventPublisher
	baseURL   string
}

// NewReminderService creates a new ReminderService.
func NewReminderService(itemRepo repositories.CatalogItemRepository, shortener LinkShortener, publisher EventPublisher, baseURL string) *ReminderService {
	return &ReminderService{
		itemRepo:  itemRepo,
		shortener: shortener,
		publisher: publisher,
		baseURL:   baseURL,
	}
}

// RegisterReminder runs the registration workflow for userID on the item
// with the given slug. Each precondition fails with its own sentinel error
// so the handler can tell the caller exactly which one broke.
//
// The notification is published BEFORE the reminder row is persisted. A
// crash between the two can re-send the notification when the caller
// retries, but can never record a reminder whose notification was lost.
// That at-least-once choice matches the duplicate-tolerant Email/SMS
// channels and must not be reordered.
func (s *ReminderService) RegisterReminder(ctx context.Context, userID, slug string) error {
	item, err := s.itemRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if item.IsAvailable() {
		return fmt.Errorf("catalog item %s: %w", slug, models.ErrAlreadyAvailable)
	}

	if item.HasRemindFor(userID) {
		return fmt.Errorf("catalog item %s, user %s: %w", slug, userID, models.ErrDuplicateReminder)
	}

	longURL := fmt.Sprintf("%s/api/v1/items/%s", s.baseURL, slug)
	shortURL, err := s.shortener.GetShortURL(ctx, longURL)
	if err != nil {
		// The message body embeds the short URL verbatim, so there is no
		// fallback to the long URL: the whole registration fails.
		return fmt.Errorf("failed to shorten detail url for %s: %w", slug, err)
	}

	message := fmt.Sprintf(
		"Hi,\nThe Item %s you requested is available Now!\nClick on the link below to continue\n%s",
		item.Name, shortURL)

	remind := events.RemindMessage{
		UserID:  userID,
		Slug:    slug,
		Message: message,
		Channel: events.NotifyEmail,
	}
	body, err := json.Marshal(remind)
	if err != nil {
		return fmt.Errorf("failed to marshal remind message: %w", err)
	}
	if err := s.publisher.Publish(events.QueueRemind, body); err != nil {
		return fmt.Errorf("failed to publish remind message for %s: %w", slug, err)
	}

	item.AddRemind(userID, time.Now().UTC())
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to persist reminder for %s: %w", slug, err)
	}

	log.Printf("Registered reminder for user %s on item %s", userID, slug)
	return nil
}
