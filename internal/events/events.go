// Package events holds the integration-event contracts this service exchanges
// over the message bus. Field names and the channel enum values are part of
// the wire contract shared with the receiving/notification services; changing
// them is a breaking change even though the structs look free to edit.
package events

import "time"

// Queue names. The receipt queue is consumed, the rest are published to.
const (
	QueueReceiptCreated = "catalog.receipt-created"
	QueueStockAvailable = "catalog.stock-available"
	QueueRemind         = "notification.remind"
	QueueItemEvents     = "catalog.item-events"
)

// ReceiptCreatedEvent is the inbound replenishment batch from the receiving
// system: one entry per item newly received into inventory. The transport
// gives no dedup or ordering guarantee across batches.
type ReceiptCreatedEvent struct {
	Items []ReceiptItem `json:"items"`
}

// ReceiptItem is one (slug, stock delta) entry of a receipt batch.
type ReceiptItem struct {
	Slug  string `json:"slug"`
	Stock int    `json:"stock"`
}

// StockAvailableEvent announces that the listed slugs were just replenished.
// It is batch-derived, not state-derived: a slug appears even if the item
// already had stock before the batch. Consumers treat it as a "check now"
// signal, never as an authoritative stock delta.
type StockAvailableEvent struct {
	Slugs []string `json:"slugs"`
}

// NotifyChannel selects the delivery channel for a remind message.
type NotifyChannel int

const (
	NotifySMS NotifyChannel = iota + 1
	NotifyEmail
	NotifyMSTeams
	NotifyTelegram
)

func (c NotifyChannel) String() string {
	switch c {
	case NotifySMS:
		return "SMS"
	case NotifyEmail:
		return "Email"
	case NotifyMSTeams:
		return "MSTeams"
	case NotifyTelegram:
		return "Telegram"
	default:
		return "Unknown"
	}
}

// RemindMessage is the rendered notification handed to the notification
// service. Message already embeds the shortened detail URL verbatim.
type RemindMessage struct {
	UserID  string        `json:"userId"`
	Slug    string        `json:"slug"`
	Message string        `json:"message"`
	Channel NotifyChannel `json:"channel"`
}

// CatalogItemEvent is published on item creation and update so downstream
// search/listing services can refresh their projections. Event is either
// "item-added" or "item-changed".
type CatalogItemEvent struct {
	Event       string    `json:"event"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Slug        string    `json:"slug"`
	DetailURL   string    `json:"detailUrl"`
	OccurredAt  time.Time `json:"occurredAt"`
}

const (
	ItemAdded   = "item-added"
	ItemChanged = "item-changed"
)
