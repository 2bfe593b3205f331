package handlers

import (
	"log"

	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the seller's order items.
type OrderHandler struct {
	service *services.OrderStatusService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderStatusService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order item routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/order-items")
	orderRoutes.Get("/", h.HandleListOrderItems)
	orderRoutes.Get("/:id", h.HandleGetOrderItem)
	orderRoutes.Get("/:id/history", h.HandleGetHistory)
	orderRoutes.Get("/:id/tracking", h.HandleGetTracking)
	orderRoutes.Patch("/:id/status", h.HandleTransition)
	orderRoutes.Post("/:id/force-status", h.HandleForceStatus)
}

// HandleListOrderItems retrieves the seller's order items, optionally
// filtered with ?status=.
func (h *OrderHandler) HandleListOrderItems(c *fiber.Ctx) error {
	sellerID := middleware.SellerID(c)
	status := models.OrderItemStatus(c.Query("status"))

	items, err := h.service.ListItems(sellerID, status)
	if err != nil {
		log.Printf("Error listing order items for seller %s: %v", sellerID, err)
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// HandleGetOrderItem retrieves a single order item by its ID.
func (h *OrderHandler) HandleGetOrderItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

// HandleGetHistory retrieves the status history of an order item.
func (h *OrderHandler) HandleGetHistory(c *fiber.Ctx) error {
	history, err := h.service.History(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(history)
}

// HandleGetTracking retrieves the courier annotations of an order item.
func (h *OrderHandler) HandleGetTracking(c *fiber.Ctx) error {
	tracking, err := h.service.Tracking(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tracking)
}

// TransitionRequest represents the body of a status transition. The status
// is the target; the rest of the fields are edge-specific extras.
type TransitionRequest struct {
	Status string `json:"status"`
	models.TransitionPayload
}

// HandleTransition moves an order item along one edge of the lifecycle.
func (h *OrderHandler) HandleTransition(c *fiber.Ctx) error {
	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transition request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for a transition.",
		})
	}

	item, err := h.service.Transition(middleware.SellerID(c), c.Params("id"),
		models.OrderItemStatus(req.Status), req.TransitionPayload)
	if err != nil {
		log.Printf("Error transitioning order item %s to %s: %v", c.Params("id"), req.Status, err)
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}

// ForceStatusRequest represents the body of a forced status override.
type ForceStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// HandleForceStatus writes an arbitrary status on an order item without
// transition validation. Kept on its own route so the unsafe path never
// hides behind the normal one.
func (h *OrderHandler) HandleForceStatus(c *fiber.Ctx) error {
	var req ForceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing force-status request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for a forced override.",
		})
	}

	item, err := h.service.ForceStatus(middleware.SellerID(c), c.Params("id"),
		models.OrderItemStatus(req.Status), req.Remarks)
	if err != nil {
		log.Printf("Error forcing status %s on order item %s: %v", req.Status, c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(item)
}
