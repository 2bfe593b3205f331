package handlers

import (
	"log"

	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReturnHandler handles HTTP requests for the seller's return requests.
type ReturnHandler struct {
	service *services.ReturnService
}

// NewReturnHandler creates a new ReturnHandler.
func NewReturnHandler(service *services.ReturnService) *ReturnHandler {
	return &ReturnHandler{
		service: service,
	}
}

// RegisterRoutes registers the return routes with the Fiber app.
func (h *ReturnHandler) RegisterRoutes(router fiber.Router) {
	returnRoutes := router.Group("/returns")
	returnRoutes.Get("/", h.HandleListReturns)
	returnRoutes.Get("/:id", h.HandleGetReturn)
	returnRoutes.Get("/:id/tracking", h.HandleGetTracking)
	returnRoutes.Get("/:id/quality-checks", h.HandleGetQualityChecks)
	returnRoutes.Get("/:id/refund", h.HandleGetRefund)
	returnRoutes.Post("/:id/review", h.HandleAcceptForReview)
	returnRoutes.Post("/:id/pickup", h.HandleAssignPickup)
	returnRoutes.Post("/:id/picked-up", h.HandleMarkPickedUp)
	returnRoutes.Post("/:id/quality-check", h.HandleQualityCheck)
	returnRoutes.Post("/:id/refund", h.HandleInitiateRefund)
	returnRoutes.Post("/:id/complete", h.HandleComplete)
}

// HandleListReturns retrieves the seller's returns, optionally filtered
// with ?status=.
func (h *ReturnHandler) HandleListReturns(c *fiber.Ctx) error {
	sellerID := middleware.SellerID(c)
	status := models.ReturnStatus(c.Query("status"))

	returns, err := h.service.ListReturns(sellerID, status)
	if err != nil {
		log.Printf("Error listing returns for seller %s: %v", sellerID, err)
		return respondServiceError(c, err)
	}
	return c.JSON(returns)
}

// HandleGetReturn retrieves a single return by its ID.
func (h *ReturnHandler) HandleGetReturn(c *fiber.Ctx) error {
	ret, err := h.service.GetReturn(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// HandleGetTracking retrieves the pickup records of a return.
func (h *ReturnHandler) HandleGetTracking(c *fiber.Ctx) error {
	tracking, err := h.service.Tracking(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tracking)
}

// HandleGetQualityChecks retrieves the inspection records of a return.
func (h *ReturnHandler) HandleGetQualityChecks(c *fiber.Ctx) error {
	checks, err := h.service.QualityChecks(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(checks)
}

// HandleGetRefund retrieves the refund record of a return.
func (h *ReturnHandler) HandleGetRefund(c *fiber.Ctx) error {
	refund, err := h.service.Refund(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(refund)
}

// HandleAcceptForReview moves an initiated return into seller review.
func (h *ReturnHandler) HandleAcceptForReview(c *fiber.Ctx) error {
	ret, err := h.service.AcceptForReview(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error accepting return %s for review: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// HandleAssignPickup schedules the reverse pickup for a return.
func (h *ReturnHandler) HandleAssignPickup(c *fiber.Ctx) error {
	var payload services.PickupPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing pickup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	ret, err := h.service.AssignPickupCourier(middleware.SellerID(c), c.Params("id"), payload)
	if err != nil {
		log.Printf("Error assigning pickup for return %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// HandleMarkPickedUp records that the courier collected the item.
func (h *ReturnHandler) HandleMarkPickedUp(c *fiber.Ctx) error {
	ret, err := h.service.MarkPickedUp(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error marking return %s picked up: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// QualityCheckRequest represents the body of an inspection outcome.
type QualityCheckRequest struct {
	Result  string `json:"result"`
	Remarks string `json:"remarks"`
}

// HandleQualityCheck records the inspection outcome of a return.
func (h *ReturnHandler) HandleQualityCheck(c *fiber.Ctx) error {
	var req QualityCheckRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing quality check request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	ret, err := h.service.PerformQualityCheck(middleware.SellerID(c), c.Params("id"), req.Result, req.Remarks)
	if err != nil {
		log.Printf("Error recording quality check for return %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// HandleInitiateRefund refunds the buyer for an approved return.
func (h *ReturnHandler) HandleInitiateRefund(c *fiber.Ctx) error {
	ret, err := h.service.InitiateRefund(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error initiating refund for return %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}

// HandleComplete closes out a refunded return.
func (h *ReturnHandler) HandleComplete(c *fiber.Ctx) error {
	ret, err := h.service.CompleteReturn(middleware.SellerID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error completing return %s: %v", c.Params("id"), err)
		return respondServiceError(c, err)
	}
	return c.JSON(ret)
}
