package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// CatalogItem is the aggregate root for a sellable item. Stock and the
// reminder collection are only ever mutated through its methods; the
// repositories persist whatever state the aggregate reaches.
type CatalogItem struct {
	ID                string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string   `json:"name" validate:"required,min=3,max=100"`
	Slug              string   `json:"slug" gorm:"uniqueIndex;type:varchar(120)"`
	Description       string   `json:"description" validate:"omitempty,max=500"`
	Price             float64  `json:"price" validate:"gte=0"`
	AvailableStock    int      `json:"available_stock" validate:"gte=0"`
	MaxStockThreshold int      `json:"max_stock_threshold" validate:"gt=0"`
	BrandID           string   `json:"brand_id" gorm:"type:varchar(36)" validate:"required"`
	CategoryID        string   `json:"category_id" gorm:"type:varchar(36)" validate:"required"`
	Reminds           []Remind `json:"reminds,omitempty" gorm:"foreignKey:CatalogItemID;constraint:OnDelete:CASCADE"`

	// No gorm.Model here: items are removed by explicit hard delete, and a
	// soft-deleted row would keep holding the unique slug hostage.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remind is a reminder record owned by a CatalogItem. It has no lifecycle of
// its own: it is created through CatalogItem.AddRemind and removed only when
// its item is removed.
type Remind struct {
	ID            uint      `json:"-" gorm:"primaryKey"`
	CatalogItemID string    `json:"-" gorm:"index:idx_item_user,unique;type:varchar(36)"`
	UserID        string    `json:"user_id" gorm:"index:idx_item_user,unique;type:varchar(36)"`
	RequestedAt   time.Time `json:"requested_at"`
}

// NewCatalogItem creates an item with its slug derived from the name. The
// slug is computed once here and never recomputed, so later edits to
// description/brand/category cannot move the item's URL. Stock always starts
// at zero; it only enters the system through replenishment.
func NewCatalogItem(name, description string, price float64, maxStockThreshold int, brandID, categoryID string) (*CatalogItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if brandID == "" {
		return nil, fmt.Errorf("%w: brand id is required", ErrInvalidItem)
	}
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category id is required", ErrInvalidItem)
	}
	if maxStockThreshold <= 0 {
		return nil, fmt.Errorf("%w: max stock threshold must be positive", ErrInvalidItem)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}

	return &CatalogItem{
		Name:              name,
		Slug:              ToKebabCase(name),
		Description:       description,
		Price:             price,
		AvailableStock:    0,
		MaxStockThreshold: maxStockThreshold,
		BrandID:           brandID,
		CategoryID:        categoryID,
	}, nil
}

// AddStock applies a positive replenishment delta. There is no upper clamp:
// MaxStockThreshold drives reorder/availability signaling, not a hard cap.
func (c *CatalogItem) AddStock(delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: stock delta must be positive, got %d", ErrInvalidItem, delta)
	}
	c.AvailableStock += delta
	return nil
}

// IsAvailable reports whether the item currently has stock.
func (c *CatalogItem) IsAvailable() bool {
	return c.AvailableStock > 0
}

// HasRemindFor reports whether userID already registered a reminder here.
func (c *CatalogItem) HasRemindFor(userID string) bool {
	for _, r := range c.Reminds {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddRemind appends a reminder record. Uniqueness per (item, user) is a
// precondition checked by the caller (see ReminderService); this method does
// not re-validate it.
func (c *CatalogItem) AddRemind(userID string, requestedAt time.Time) {
	c.Reminds = append(c.Reminds, Remind{
		CatalogItemID: c.ID,
		UserID:        userID,
		RequestedAt:   requestedAt,
	})
}

// SetMaxStockThreshold replaces the reorder threshold.
func (c *CatalogItem) SetMaxStockThreshold(value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: max stock threshold must be positive, got %d", ErrInvalidItem, value)
	}
	c.MaxStockThreshold = value
	return nil
}

// UpdateDetails is a partial update of the mutable fields. Name, slug and
// stock are deliberately untouchable here.
func (c *CatalogItem) UpdateDetails(description string, price float64, brandID, categoryID string) error {
	if brandID == "" {
		return fmt.Errorf("%w: brand id is required", ErrInvalidItem)
	}
	if categoryID == "" {
		return fmt.Errorf("%w: category id is required", ErrInvalidItem)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	c.Description = description
	c.Price = price
	c.BrandID = brandID
	c.CategoryID = categoryID
	return nil
}

// StockDelta is one entry of a replenishment batch handed to the repository
// for a single transactional commit.
type StockDelta struct {
	Slug  string
	Stock int
}

// ToKebabCase lowercases a display name into a URL-safe slug:
// "Blue Mountain Coffee" -> "blue-mountain-coffee".
func ToKebabCase(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
