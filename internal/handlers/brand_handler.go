package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

// BrandHandler handles HTTP requests for brands. Brand CRUD has no business
// rules beyond uniqueness, so it talks to the repository directly.
type BrandHandler struct {
	repo     repositories.BrandRepository
	validate *validator.Validate
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(repo repositories.BrandRepository) *BrandHandler {
	return &BrandHandler{repo: repo, validate: validator.New()}
}

// RegisterRoutes registers the public brand routes.
func (h *BrandHandler) RegisterRoutes(router fiber.Router) {
	brandRoutes := router.Group("/brands")
	brandRoutes.Get("/", h.HandleGetBrands)
	brandRoutes.Get("/:id", h.HandleGetBrandByID)
}

// RegisterAdminRoutes registers the mutating brand routes.
func (h *BrandHandler) RegisterAdminRoutes(router fiber.Router) {
	brandRoutes := router.Group("/brands")
	brandRoutes.Post("/", h.HandleCreateBrand)
	brandRoutes.Delete("/:id", h.HandleDeleteBrand)
}

// HandleGetBrands retrieves all brands.
func (h *BrandHandler) HandleGetBrands(c *fiber.Ctx) error {
	brands, err := h.repo.GetAll(c.Context())
	if err != nil {
		log.Printf("Error getting brands: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve brands",
		})
	}
	return c.JSON(brands)
}

// HandleGetBrandByID retrieves a single brand.
func (h *BrandHandler) HandleGetBrandByID(c *fiber.Ctx) error {
	brand, err := h.repo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, models.ErrBrandNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve brand",
		})
	}
	return c.JSON(brand)
}

// HandleCreateBrand creates a new brand.
func (h *BrandHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var brand models.Brand
	if err := c.BodyParser(&brand); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(brand); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	if err := h.repo.Create(c.Context(), &brand); err != nil {
		log.Printf("Error creating brand: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create brand",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// HandleDeleteBrand removes a brand.
func (h *BrandHandler) HandleDeleteBrand(c *fiber.Ctx) error {
	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, models.ErrBrandNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete brand",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
