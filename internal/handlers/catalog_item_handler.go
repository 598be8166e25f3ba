package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"catalog/internal/models"
	"catalog/internal/services"
)

// CatalogItemHandler handles HTTP requests for catalog items.
type CatalogItemHandler struct {
	itemService     *services.CatalogItemService
	reminderService *services.ReminderService
	validate        *validator.Validate
}

// NewCatalogItemHandler creates a new CatalogItemHandler.
func NewCatalogItemHandler(itemService *services.CatalogItemService, reminderService *services.ReminderService) *CatalogItemHandler {
	return &CatalogItemHandler{
		itemService:     itemService,
		reminderService: reminderService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the public item routes with the Fiber app.
func (h *CatalogItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleGetItems)
	itemRoutes.Get("/:slug", h.HandleGetItemBySlug)
	itemRoutes.Post("/:slug/reminder", h.HandleCreateReminder)
}

// RegisterAdminRoutes registers the mutating item routes; the caller wraps
// them in the auth middleware.
func (h *CatalogItemHandler) RegisterAdminRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Put("/", h.HandleUpdateItem)
	itemRoutes.Patch("/max_stock_threshold", h.HandleUpdateMaxStockThreshold)
	itemRoutes.Delete("/:slug", h.HandleDeleteItem)
}

// CreateCatalogItemRequest is the payload for creating an item.
type CreateCatalogItemRequest struct {
	Name              string  `json:"name" validate:"required,min=3,max=100"`
	Description       string  `json:"description" validate:"omitempty,max=500"`
	Price             float64 `json:"price" validate:"gte=0"`
	MaxStockThreshold int     `json:"max_stock_threshold" validate:"required,gt=0"`
	BrandID           string  `json:"brand_id" validate:"required,uuid"`
	CategoryID        string  `json:"category_id" validate:"required,uuid"`
}

// UpdateCatalogItemRequest is the payload for the partial item update.
type UpdateCatalogItemRequest struct {
	Slug        string  `json:"slug" validate:"required"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"gte=0"`
	BrandID     string  `json:"brand_id" validate:"required,uuid"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
}

// UpdateMaxStockThresholdRequest is the payload for the threshold patch.
type UpdateMaxStockThresholdRequest struct {
	Slug              string `json:"slug" validate:"required"`
	MaxStockThreshold int    `json:"max_stock_threshold" validate:"required,gt=0"`
}

// HandleGetItems retrieves all catalog items.
func (h *CatalogItemHandler) HandleGetItems(c *fiber.Ctx) error {
	items, err := h.itemService.GetAllItems(c.Context())
	if err != nil {
		log.Printf("Error getting all items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve catalog items",
		})
	}
	return c.JSON(items)
}

// HandleGetItemBySlug retrieves a single catalog item.
func (h *CatalogItemHandler) HandleGetItemBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	item, err := h.itemService.GetItemBySlug(c.Context(), slug)
	if err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(item)
}

// HandleCreateItem creates a new catalog item.
func (h *CatalogItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req CreateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	item, err := h.itemService.CreateItem(c.Context(), req.Name, req.Description, req.Price, req.MaxStockThreshold, req.BrandID, req.CategoryID)
	if err != nil {
		return itemErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem applies a partial update to an existing item.
func (h *CatalogItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	item, err := h.itemService.UpdateItem(c.Context(), req.Slug, req.Description, req.Price, req.BrandID, req.CategoryID)
	if err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(item)
}

// HandleUpdateMaxStockThreshold patches the reorder threshold.
func (h *CatalogItemHandler) HandleUpdateMaxStockThreshold(c *fiber.Ctx) error {
	var req UpdateMaxStockThresholdRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.itemService.SetMaxStockThreshold(c.Context(), req.Slug, req.MaxStockThreshold); err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Max stock threshold updated"})
}

// HandleDeleteItem removes a catalog item.
func (h *CatalogItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if err := h.itemService.DeleteItem(c.Context(), slug); err != nil {
		return itemErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCreateReminder registers a "remind me when available" request for
// the user_id query parameter on the item in the path.
func (h *CatalogItemHandler) HandleCreateReminder(c *fiber.Ctx) error {
	slug := c.Params("slug")
	userID := c.Query("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "user_id must be a valid UUID",
		})
	}

	if err := h.reminderService.RegisterReminder(c.Context(), userID, slug); err != nil {
		log.Printf("Reminder registration failed for user %s on %s: %v", userID, slug, err)
		switch {
		case errors.Is(err, models.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item with slug " + slug + " not found",
			})
		case errors.Is(err, models.ErrAlreadyAvailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Item with slug " + slug + " is already available",
			})
		case errors.Is(err, models.ErrDuplicateReminder):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Item with slug " + slug + " already has a reminder for this user",
			})
		default:
			// Shortener, bus or store failure: nothing was persisted, the
			// caller may retry the whole registration.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Could not register reminder, please retry",
			})
		}
	}
	return c.SendStatus(fiber.StatusOK)
}

// itemErrorResponse maps domain errors to HTTP statuses for the item CRUD
// endpoints.
func itemErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, models.ErrBrandNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrInvalidItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, models.ErrSlugTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		log.Printf("Catalog item request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
