package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog/internal/events"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/shortener"
)

// recordingPublisher captures published messages per queue.
type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	failNext bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{messages: make(map[string][][]byte)}
}

func (p *recordingPublisher) Publish(queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext {
		p.failNext = false
		return fmt.Errorf("broker unavailable")
	}
	p.messages[queue] = append(p.messages[queue], body)
	return nil
}

func (p *recordingPublisher) published(queue string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[queue]
}

type testEnv struct {
	app          *fiber.App
	db           *gorm.DB
	publisher    *recordingPublisher
	shortenerSrv *httptest.Server
	replenish    *services.ReplenishmentService
	brandID      string
	categoryID   string
}

// setupEnv wires the full stack against an in-memory SQLite database and a
// fake shortening service, seeding one brand and one category.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// Unique DSN per test: cache=shared keeps one database across pooled
	// connections, the random name isolates tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Brand{}, &models.Category{}, &models.CatalogItem{}, &models.Remind{}, &models.User{},
	))

	shortenerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("http://s/abc"))
	}))
	t.Cleanup(shortenerSrv.Close)

	publisher := newRecordingPublisher()

	itemRepo := repositories.NewGORMCatalogItemRepository(db)
	brandRepo := repositories.NewGORMBrandRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	quickLinker := shortener.NewQuickLinker(shortenerSrv.URL)
	itemService := services.NewCatalogItemService(itemRepo, brandRepo, categoryRepo, publisher, "http://localhost:8080")
	reminderService := services.NewReminderService(itemRepo, quickLinker, publisher, "http://localhost:8080")
	replenishmentService := services.NewReplenishmentService(itemRepo, publisher)
	authService := services.NewAuthService(userRepo, "test_jwt_secret")

	itemHandler := handlers.NewCatalogItemHandler(itemService, reminderService)
	brandHandler := handlers.NewBrandHandler(brandRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	itemHandler.RegisterRoutes(apiV1)
	brandHandler.RegisterRoutes(apiV1)
	categoryHandler.RegisterRoutes(apiV1)

	adminRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	itemHandler.RegisterAdminRoutes(adminRoutes)
	brandHandler.RegisterAdminRoutes(adminRoutes)
	categoryHandler.RegisterAdminRoutes(adminRoutes)

	brand := models.Brand{Name: "Acme"}
	category := models.Category{Name: "Tools"}
	assert.NoError(t, brandRepo.Create(context.Background(), &brand))
	assert.NoError(t, categoryRepo.Create(context.Background(), &category))

	return &testEnv{
		app:          app,
		db:           db,
		publisher:    publisher,
		shortenerSrv: shortenerSrv,
		replenish:    replenishmentService,
		brandID:      brand.ID,
		categoryID:   category.ID,
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, token string) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

// registerAndLogin creates an operator account and returns its JWT.
func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "admin",
		"email":    "admin@example.com",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out["token"])
	return out["token"]
}

func createItem(t *testing.T, env *testEnv, token, name string) string {
	t.Helper()
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/items/", map[string]any{
		"name":                name,
		"description":         "integration test item",
		"price":               10.0,
		"max_stock_threshold": 10,
		"brand_id":            env.brandID,
		"category_id":         env.categoryID,
	}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.CatalogItem
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	return item.Slug
}

func TestItemMutationsRequireAuth(t *testing.T) {
	env := setupEnv(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/items/", map[string]any{}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/items/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads stay public")
}

func TestCreateItem_ValidationAndConflicts(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)

	slug := createItem(t, env, token, "Power Drill")
	assert.Equal(t, "power-drill", slug)

	// Same name kebab-cases to the same slug.
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/items/", map[string]any{
		"name":                "Power Drill",
		"price":               10.0,
		"max_stock_threshold": 10,
		"brand_id":            env.brandID,
		"category_id":         env.categoryID,
	}, token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown brand is rejected before anything is written.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/", map[string]any{
		"name":                "Another Item",
		"price":               10.0,
		"max_stock_threshold": 10,
		"brand_id":            uuid.New().String(),
		"category_id":         env.categoryID,
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Threshold must be positive.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/", map[string]any{
		"name":                "Bad Threshold",
		"price":               10.0,
		"max_stock_threshold": 0,
		"brand_id":            env.brandID,
		"category_id":         env.categoryID,
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	added := env.publisher.published(events.QueueItemEvents)
	assert.Len(t, added, 1, "exactly one item-added event for the one successful create")
}

func TestReminderEndToEnd(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)
	slug := createItem(t, env, token, "Power Drill")
	userID := uuid.New().String()

	// Unknown slug -> 404.
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/items/no-such-item/reminder?user_id="+userID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Malformed user id -> 400 before any lookup.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id=not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// First registration succeeds and fans out a notification.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+userID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	reminds := env.publisher.published(events.QueueRemind)
	assert.Len(t, reminds, 1)
	var remind events.RemindMessage
	assert.NoError(t, json.Unmarshal(reminds[0], &remind))
	assert.Equal(t, userID, remind.UserID)
	assert.Equal(t, slug, remind.Slug)
	assert.Equal(t, events.NotifyEmail, remind.Channel)
	assert.Contains(t, remind.Message, "http://s/abc")
	assert.Contains(t, remind.Message, "Power Drill")

	// The reminder row is durable: a second attempt is a duplicate.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+userID, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, env.publisher.published(events.QueueRemind), 1, "duplicate must not re-send")

	// A different user may still register.
	otherID := uuid.New().String()
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+otherID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Replenish the item; reminders are then rejected as already available.
	err := env.replenish.ApplyReceipt(context.Background(), events.ReceiptCreatedEvent{
		Items: []events.ReceiptItem{{Slug: slug, Stock: 3}},
	})
	assert.NoError(t, err)

	available := env.publisher.published(events.QueueStockAvailable)
	assert.Len(t, available, 1)
	var stockEvt events.StockAvailableEvent
	assert.NoError(t, json.Unmarshal(available[0], &stockEvt))
	assert.Equal(t, []string{slug}, stockEvt.Slugs)

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReminder_PublishFailureLeavesNoReminder(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)
	slug := createItem(t, env, token, "Power Drill")
	userID := uuid.New().String()

	env.publisher.failNext = true
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+userID, nil, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// Nothing persisted, so the retry runs the whole workflow again and the
	// notification goes out this time.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+userID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, env.publisher.published(events.QueueRemind), 1)
}

func TestReminder_ShortenerFailureFailsRegistration(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	// Rebuild the reminder route against the failing shortener.
	itemRepo := repositories.NewGORMCatalogItemRepository(env.db)
	reminderService := services.NewReminderService(itemRepo, shortener.NewQuickLinker(failing.URL), env.publisher, "http://localhost:8080")
	itemService := services.NewCatalogItemService(itemRepo, repositories.NewGORMBrandRepository(env.db), repositories.NewGORMCategoryRepository(env.db), env.publisher, "http://localhost:8080")
	app := fiber.New()
	handlers.NewCatalogItemHandler(itemService, reminderService).RegisterRoutes(app.Group("/api/v1"))

	slug := createItem(t, env, token, "Power Drill")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+slug+"/reminder?user_id="+uuid.New().String(), nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	assert.Empty(t, env.publisher.published(events.QueueRemind), "no notification on shortener failure")

	item, err := itemRepo.GetBySlug(context.Background(), slug)
	assert.NoError(t, err)
	assert.Empty(t, item.Reminds, "no partial reminder state")
}

func TestReplenishment_UnknownSlugIsAtomic(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)
	slug := createItem(t, env, token, "Power Drill")

	err := env.replenish.ApplyReceipt(context.Background(), events.ReceiptCreatedEvent{
		Items: []events.ReceiptItem{
			{Slug: slug, Stock: 3},
			{Slug: "ghost-item", Stock: 5},
		},
	})
	assert.ErrorIs(t, err, models.ErrItemNotFound)
	assert.Empty(t, env.publisher.published(events.QueueStockAvailable))

	itemRepo := repositories.NewGORMCatalogItemRepository(env.db)
	item, err := itemRepo.GetBySlug(context.Background(), slug)
	assert.NoError(t, err)
	assert.Equal(t, 0, item.AvailableStock, "no partial stock application")
}

func TestItemCRUDRoundTrip(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)
	slug := createItem(t, env, token, "Power Drill")

	// Update mutable fields.
	resp := doJSON(t, env.app, http.MethodPut, "/api/v1/items/", map[string]any{
		"slug":        slug,
		"description": "updated",
		"price":       12.5,
		"brand_id":    env.brandID,
		"category_id": env.categoryID,
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Patch the threshold.
	resp = doJSON(t, env.app, http.MethodPatch, "/api/v1/items/max_stock_threshold", map[string]any{
		"slug":                slug,
		"max_stock_threshold": 42,
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/items/"+slug, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var item models.CatalogItem
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, "updated", item.Description)
	assert.Equal(t, 42, item.MaxStockThreshold)
	assert.Equal(t, "Power Drill", item.Name)

	// Delete, then the slug is gone.
	resp = doJSON(t, env.app, http.MethodDelete, "/api/v1/items/"+slug, nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/items/"+slug, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBrandAndCategoryCRUD(t *testing.T) {
	env := setupEnv(t)
	token := registerAndLogin(t, env.app)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/brands/", map[string]string{"name": "Bosch"}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var brand models.Brand
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&brand))

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/brands/"+brand.ID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodDelete, "/api/v1/brands/"+brand.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/brands/"+brand.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/categories/", map[string]string{"name": "Garden"}, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/categories/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []models.Category
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Len(t, categories, 2)
}
