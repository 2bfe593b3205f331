package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"lapak/internal/handlers"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/payout"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the app with the collaborators tests need to seed data
// and inspect results.
type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	authService *services.AuthService
	orderRepo   repositories.OrderItemRepository
	returnRepo  repositories.ReturnRepository
	variantRepo repositories.VariantRepository
	bundleRepo  repositories.BundleRepository
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers and services wired the way main does it, minus the broker,
// cache and payment provider.
func setupApp() (*testEnv, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A unique DSN per setup keeps test databases isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Seller{},
		&models.Order{}, &models.OrderItem{}, &models.OrderStatusHistory{},
		&models.OrderTracking{}, &models.OrderCancellation{},
		&models.OrderReturn{}, &models.ReturnTracking{}, &models.ReturnQualityCheck{}, &models.OrderRefund{},
		&models.ListingVariant{}, &models.Bundle{}, &models.BundleItem{},
		&models.LowStockNotification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	sellerRepo := repositories.NewGORMSellerRepository(db)
	orderRepo := repositories.NewGORMOrderItemRepository(db)
	returnRepo := repositories.NewGORMReturnRepository(db)
	variantRepo := repositories.NewGORMVariantRepository(db)
	bundleRepo := repositories.NewGORMBundleRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)

	payouts := payout.NoopProcessor{}
	authService := services.NewAuthService(sellerRepo, jwtSecret)
	orderService := services.NewOrderStatusService(orderRepo, payouts, nil)
	returnService := services.NewReturnService(returnRepo, orderRepo, payouts, nil)
	stockService := services.NewStockService(variantRepo, bundleRepo, notificationRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	returnHandler := handlers.NewReturnHandler(returnService)
	stockHandler := handlers.NewStockHandler(stockService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protectedRoutes)
	returnHandler.RegisterRoutes(protectedRoutes)
	stockHandler.RegisterRoutes(protectedRoutes)

	return &testEnv{
		app:         app,
		db:          db,
		authService: authService,
		orderRepo:   orderRepo,
		returnRepo:  returnRepo,
		variantRepo: variantRepo,
		bundleRepo:  bundleRepo,
	}, nil
}

// registerAndLogin creates a seller through the API and returns the token
// and seller ID.
func registerAndLogin(t *testing.T, env *testEnv, username string) (string, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"store_name": username + " store",
		"password":   "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{"username": username, "password": "password123"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	token := loginResp["token"]
	assert.NotEmpty(t, token)

	claims, err := env.authService.ValidateToken(token)
	assert.NoError(t, err)
	sellerID, _ := claims["seller_id"].(string)
	assert.NotEmpty(t, sellerID)

	return token, sellerID
}

// doJSON fires a JSON request with the given token and returns the response.
func doJSON(t *testing.T, env *testEnv, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		body, _ := json.Marshal(payload)
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func seedOrderItem(t *testing.T, env *testEnv, sellerID string, status models.OrderItemStatus) *models.OrderItem {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New().String(),
		BuyerID:         "buyer-1",
		TotalAmount:     50,
		FinalAmount:     50,
		PaymentIntentID: "pi_test_123",
		Items: []models.OrderItem{{
			ID:               uuid.New().String(),
			SellerID:         sellerID,
			ListingVariantID: "variant-x",
			Quantity:         2,
			UnitPrice:        25,
			Subtotal:         50,
			Status:           status,
		}},
	}
	assert.NoError(t, env.orderRepo.CreateOrder(order))
	return &order.Items[0]
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	token, sellerID := registerAndLogin(t, env, "seller_auth")
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, sellerID)

	// Duplicate registration conflicts.
	body, _ := json.Marshal(map[string]string{
		"username":   "seller_auth",
		"email":      "seller_auth@example.com",
		"store_name": "another store",
		"password":   "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderItemLifecycle(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_orders")
	item := seedOrderItem(t, env, sellerID, models.StatusPending)

	// pending -> packed
	resp := doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "packed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// packed -> shipped without courier details is rejected
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// packed -> shipped with the details succeeds
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "shipped", "courier_partner": "BlueDart", "consignment_number": "BD-42"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var shipped models.OrderItem
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&shipped))
	assert.Equal(t, models.StatusShipped, shipped.Status)
	resp.Body.Close()

	// shipped -> delivered
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// delivered is terminal: another transition conflicts
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "packed"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// One history row per applied transition
	resp = doJSON(t, env, http.MethodGet, "/api/v1/order-items/"+item.ID+"/history", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.OrderStatusHistory
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Len(t, history, 3)
	resp.Body.Close()

	// The shipped transition left exactly one tracking row
	resp = doJSON(t, env, http.MethodGet, "/api/v1/order-items/"+item.ID+"/tracking", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tracking []models.OrderTracking
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&tracking))
	assert.Len(t, tracking, 1)
	assert.Equal(t, "BlueDart", tracking[0].CourierPartner)
	resp.Body.Close()
}

func TestOrderItemCancellationAndForceStatus(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_cancel")
	item := seedOrderItem(t, env, sellerID, models.StatusPending)

	// Cancelling without a reason is rejected
	resp := doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// With a reason it succeeds
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", token,
		map[string]string{"status": "cancelled", "reason": "buyer requested"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// cancelled is terminal for Transition, but ForceStatus can still move it
	resp = doJSON(t, env, http.MethodPost, "/api/v1/order-items/"+item.ID+"/force-status", token,
		map[string]string{"status": "pending", "remarks": "support ticket 1920"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var forced models.OrderItem
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&forced))
	assert.Equal(t, models.StatusPending, forced.Status)
	resp.Body.Close()
}

func TestReturnFlow(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_returns")
	item := seedOrderItem(t, env, sellerID, models.StatusDelivered)

	ret := &models.OrderReturn{
		OrderItemID: item.ID,
		SellerID:    sellerID,
		BuyerID:     "buyer-1",
		Reason:      "damaged on arrival",
		ReturnType:  "return",
		Status:      models.ReturnInitiated,
	}
	assert.NoError(t, env.returnRepo.Create(ret))

	// Pickup without a consignment number is rejected
	resp := doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/pickup", token,
		map[string]string{"courier_partner": "Delhivery"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Schedule the pickup
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/pickup", token,
		map[string]string{"courier_partner": "Delhivery", "consignment_number": "DL-77"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Courier collects the item
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/picked-up", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Inspection passes, approving the return
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/quality-check", token,
		map[string]string{"result": "passed", "remarks": "item intact"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.OrderReturn
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&approved))
	assert.Equal(t, models.ReturnApproved, approved.Status)
	resp.Body.Close()

	// Refund the buyer
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/refund", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The refund record carries the item subtotal
	resp = doJSON(t, env, http.MethodGet, "/api/v1/returns/"+ret.ID+"/refund", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var refund models.OrderRefund
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&refund))
	assert.Equal(t, 50.0, refund.Amount)
	assert.Equal(t, "completed", refund.Status)
	resp.Body.Close()

	// Close it out
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/complete", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Completed returns reject all further mutation, quality checks included
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/quality-check", token,
		map[string]string{"result": "passed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestRejectedReturnIsTerminal(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_rejected")
	item := seedOrderItem(t, env, sellerID, models.StatusDelivered)

	ret := &models.OrderReturn{
		OrderItemID: item.ID,
		SellerID:    sellerID,
		Reason:      "changed mind",
		ReturnType:  "return",
		Status:      models.ReturnQualityCheckDue,
	}
	assert.NoError(t, env.returnRepo.Create(ret))

	// Failed inspection rejects the return
	resp := doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/quality-check", token,
		map[string]string{"result": "failed", "remarks": "seal broken"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rejected models.OrderReturn
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&rejected))
	assert.Equal(t, models.ReturnRejected, rejected.Status)
	resp.Body.Close()

	// No refund from rejected
	resp = doJSON(t, env, http.MethodPost, "/api/v1/returns/"+ret.ID+"/refund", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestStockEndpoints(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_stock")

	variant := &models.ListingVariant{
		SellerID:      sellerID,
		SKU:           "MUG-BLUE",
		Name:          "Blue Mug",
		Price:         12.5,
		StockQuantity: 4,
		IsAvailable:   true,
	}
	assert.NoError(t, env.variantRepo.Create(variant))

	// A non-positive restock is rejected
	resp := doJSON(t, env, http.MethodPost, "/api/v1/variants/"+variant.ID+"/restock", token,
		map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// 4 + 3 = 7, still low against the default threshold
	resp = doJSON(t, env, http.MethodPost, "/api/v1/variants/"+variant.ID+"/restock", token,
		map[string]int{"quantity": 3})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var restocked models.ListingVariant
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&restocked))
	assert.Equal(t, 7, restocked.StockQuantity)
	resp.Body.Close()

	// The low quantity produced a notification
	resp = doJSON(t, env, http.MethodGet, "/api/v1/notifications/?unseen=true", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var notifications []models.LowStockNotification
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	assert.Len(t, notifications, 1)
	assert.Equal(t, "low", notifications[0].Level)
	resp.Body.Close()

	// Acknowledge it
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/notifications/"+notifications[0].ID+"/seen", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The variant detail reports the classification
	resp = doJSON(t, env, http.MethodGet, "/api/v1/variants/"+variant.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, "low", detail["stock_level"])
	resp.Body.Close()
}

func TestBundleEffectiveStockEndpoint(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	token, sellerID := registerAndLogin(t, env, "seller_bundles")

	v1 := &models.ListingVariant{SellerID: sellerID, SKU: "A", Name: "Variant A", Price: 10, StockQuantity: 70, IsAvailable: true}
	v2 := &models.ListingVariant{SellerID: sellerID, SKU: "B", Name: "Variant B", Price: 20, StockQuantity: 30, IsAvailable: true}
	assert.NoError(t, env.variantRepo.Create(v1))
	assert.NoError(t, env.variantRepo.Create(v2))

	bundle := &models.Bundle{
		SellerID: sellerID,
		Name:     "Starter Kit",
		Price:    25,
		Items: []models.BundleItem{
			{ListingVariantID: v1.ID, Quantity: 2},
			{ListingVariantID: v2.ID, Quantity: 1},
		},
	}
	assert.NoError(t, env.bundleRepo.Create(bundle))

	// min(floor(70/2), 30) = 30
	resp := doJSON(t, env, http.MethodGet, "/api/v1/bundles/"+bundle.ID+"/stock", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stock map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&stock))
	assert.Equal(t, float64(30), stock["effective_stock"])
	resp.Body.Close()

	// Hiding a constituent zeroes the bundle on the next read
	resp = doJSON(t, env, http.MethodPatch, "/api/v1/variants/"+v2.ID+"/availability", token,
		map[string]bool{"available": false})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env, http.MethodGet, "/api/v1/bundles/"+bundle.ID+"/stock", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&stock))
	assert.Equal(t, float64(0), stock["effective_stock"])
	resp.Body.Close()
}

func TestOwnershipIsolation(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	_, ownerID := registerAndLogin(t, env, "seller_owner")
	intruderToken, _ := registerAndLogin(t, env, "seller_intruder")
	item := seedOrderItem(t, env, ownerID, models.StatusPending)

	// Another seller cannot read or move the item
	resp := doJSON(t, env, http.MethodGet, "/api/v1/order-items/"+item.ID, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env, http.MethodPatch, "/api/v1/order-items/"+item.ID+"/status", intruderToken,
		map[string]string{"status": "packed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// An unknown item is a 404, not a 403
	resp = doJSON(t, env, http.MethodGet, "/api/v1/order-items/"+uuid.New().String(), intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestEndpointsWithoutAuth(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	for _, path := range []string{
		"/api/v1/order-items/",
		"/api/v1/returns/",
		"/api/v1/variants/",
		"/api/v1/notifications/",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := env.app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}
