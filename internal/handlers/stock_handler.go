package handlers

import (
	"log"

	"lapak/internal/middleware"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StockHandler handles HTTP requests for variant stock, bundles and
// low-stock notifications.
type StockHandler struct {
	service *services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(service *services.StockService) *StockHandler {
	return &StockHandler{
		service: service,
	}
}

// RegisterRoutes registers the stock routes with the Fiber app.
func (h *StockHandler) RegisterRoutes(router fiber.Router) {
	variantRoutes := router.Group("/variants")
	variantRoutes.Get("/", h.HandleListVariants)
	variantRoutes.Get("/:id", h.HandleGetVariant)
	variantRoutes.Post("/:id/restock", h.HandleRestock)
	variantRoutes.Patch("/:id/availability", h.HandleSetAvailability)

	bundleRoutes := router.Group("/bundles")
	bundleRoutes.Get("/", h.HandleListBundles)
	bundleRoutes.Get("/:id/stock", h.HandleGetBundleStock)

	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Get("/", h.HandleListNotifications)
	notificationRoutes.Patch("/:id/seen", h.HandleMarkSeen)
}

// HandleListVariants retrieves the seller's listing variants.
func (h *StockHandler) HandleListVariants(c *fiber.Ctx) error {
	variants, err := h.service.ListVariants(middleware.SellerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(variants)
}

// HandleGetVariant retrieves one variant with its stock classification.
func (h *StockHandler) HandleGetVariant(c *fiber.Ctx) error {
	sellerID := middleware.SellerID(c)
	variant, err := h.service.GetVariant(sellerID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	level, _, err := h.service.VariantStockLevel(sellerID, variant.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"variant":     variant,
		"stock_level": level,
	})
}

// RestockRequest represents the body of a restock.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// HandleRestock adds stock to a variant.
func (h *StockHandler) HandleRestock(c *fiber.Ctx) error {
	var req RestockRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing restock request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	variant, err := h.service.Restock(middleware.SellerID(c), c.Params("id"), req.Quantity)
	if err != nil {
		log.Printf("Error restocking variant %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(variant)
}

// AvailabilityRequest represents the body of an availability change.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// HandleSetAvailability flips a variant's availability flag.
func (h *StockHandler) HandleSetAvailability(c *fiber.Ctx) error {
	var req AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing availability request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	variant, err := h.service.SetVariantAvailability(middleware.SellerID(c), c.Params("id"), req.Available)
	if err != nil {
		log.Printf("Error setting availability on variant %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(variant)
}

// HandleListBundles retrieves the seller's bundles with derived stock.
func (h *StockHandler) HandleListBundles(c *fiber.Ctx) error {
	bundles, err := h.service.ListBundles(middleware.SellerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bundles)
}

// HandleGetBundleStock returns the effective stock of a single bundle.
func (h *StockHandler) HandleGetBundleStock(c *fiber.Ctx) error {
	quantity, err := h.service.EffectiveBundleStock(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"bundle_id":       c.Params("id"),
		"effective_stock": quantity,
	})
}

// HandleListNotifications retrieves low-stock notifications, unseen only
// with ?unseen=true.
func (h *StockHandler) HandleListNotifications(c *fiber.Ctx) error {
	unseenOnly := c.Query("unseen") == "true"
	notifications, err := h.service.ListNotifications(middleware.SellerID(c), unseenOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifications)
}

// HandleMarkSeen acknowledges one low-stock notification.
func (h *StockHandler) HandleMarkSeen(c *fiber.Ctx) error {
	if err := h.service.MarkNotificationSeen(middleware.SellerID(c), c.Params("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Notification marked as seen",
	})
}
