package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/payout"
	"lapak/pkg/rabbitmq"
)

// OrderStatusService enforces the order item lifecycle: it validates
// requested edges against the transition table, runs the ordered side
// effects and records every change in the status history.
//
// The side-effect sequence is status write, tracking insert (shipped),
// cancellation insert (cancelled), history append, payout (delivered),
// event publish. There is no transactional envelope: a failing later step
// leaves the earlier writes in place and surfaces an UpstreamError.
type OrderStatusService struct {
	orderRepo repositories.OrderItemRepository
	payouts   payout.Processor
	publisher rabbitmq.Publisher
}

// NewOrderStatusService creates a new OrderStatusService. publisher may be
// nil, in which case events are skipped.
func NewOrderStatusService(orderRepo repositories.OrderItemRepository, payouts payout.Processor, publisher rabbitmq.Publisher) *OrderStatusService {
	return &OrderStatusService{
		orderRepo: orderRepo,
		payouts:   payouts,
		publisher: publisher,
	}
}

// GetItem retrieves one of the seller's order items.
func (s *OrderStatusService) GetItem(sellerID, orderItemID string) (*models.OrderItem, error) {
	return s.loadOwnedItem(sellerID, orderItemID)
}

// ListItems retrieves the seller's order items, optionally filtered by status.
func (s *OrderStatusService) ListItems(sellerID string, status models.OrderItemStatus) ([]models.OrderItem, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("unknown order item status: %s", status)
	}
	return s.orderRepo.ListBySeller(sellerID, status)
}

// History retrieves the append-only status history of an order item.
func (s *OrderStatusService) History(sellerID, orderItemID string) ([]models.OrderStatusHistory, error) {
	if _, err := s.loadOwnedItem(sellerID, orderItemID); err != nil {
		return nil, err
	}
	return s.orderRepo.HistoryForItem(orderItemID)
}

// Tracking retrieves the courier annotations of an order item.
func (s *OrderStatusService) Tracking(sellerID, orderItemID string) ([]models.OrderTracking, error) {
	if _, err := s.loadOwnedItem(sellerID, orderItemID); err != nil {
		return nil, err
	}
	return s.orderRepo.TrackingForItem(orderItemID)
}

// Transition applies one legal status edge to an order item. All
// validation happens before the first write; after that, steps are applied
// in order and never rolled back.
func (s *OrderStatusService) Transition(sellerID, orderItemID string, target models.OrderItemStatus, p models.TransitionPayload) (*models.OrderItem, error) {
	item, err := s.loadOwnedItem(sellerID, orderItemID)
	if err != nil {
		return nil, err
	}

	if !target.IsValid() || !item.Status.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{Entity: "order item", From: string(item.Status), To: string(target)}
	}
	if err := validatePayload(target, p); err != nil {
		return nil, err
	}

	oldStatus := item.Status

	// Step 1: status write.
	if err := s.orderRepo.UpdateStatus(item.ID, target); err != nil {
		return nil, &UpstreamError{Step: "status update", Err: err}
	}
	item.Status = target

	// Step 2: courier annotation, shipped only.
	if target == models.StatusShipped {
		tracking := &models.OrderTracking{
			OrderItemID:       item.ID,
			CourierPartner:    strings.TrimSpace(p.CourierPartner),
			ConsignmentNumber: strings.TrimSpace(p.ConsignmentNumber),
			CourierPhone:      p.CourierPhone,
			EstimatedDelivery: p.EstimatedDelivery,
			PickupDate:        p.PickupDate,
			Instructions:      p.Instructions,
			Notes:             p.Notes,
		}
		if err := s.orderRepo.AppendTracking(tracking); err != nil {
			return nil, &UpstreamError{Step: "tracking insert", Err: err}
		}
	}

	// Step 3: cancellation record, cancelled only.
	if target == models.StatusCancelled {
		cancellation := &models.OrderCancellation{
			OrderItemID: item.ID,
			Reason:      strings.TrimSpace(p.Reason),
			CancelledBy: sellerID,
		}
		if err := s.orderRepo.CreateCancellation(cancellation); err != nil {
			return nil, &UpstreamError{Step: "cancellation insert", Err: err}
		}
	}

	// Step 4: history append, one row per transition.
	entry := &models.OrderStatusHistory{
		OrderItemID: item.ID,
		OldStatus:   oldStatus,
		NewStatus:   target,
		ChangedBy:   sellerID,
		Remarks:     summarizeTransition(target, p),
	}
	if err := s.orderRepo.AppendHistory(entry); err != nil {
		return nil, &UpstreamError{Step: "history insert", Err: err}
	}

	// Step 5: payout, delivered only. A failed payout does not undo the
	// delivery; it is logged for manual reconciliation.
	if target == models.StatusDelivered {
		result, err := s.payouts.ProcessDeliveryForPayout(item.ID, sellerID, item.Subtotal)
		if err != nil {
			log.Printf("Payout recording failed for order item %s (needs manual reconciliation): %v", item.ID, err)
		} else if !result.Success {
			log.Printf("Payout collaborator rejected order item %s (needs manual reconciliation): %s", item.ID, result.Message)
		}
	}

	s.publishStatusChanged(item, oldStatus, false)
	return item, nil
}

// ForceStatus writes an arbitrary valid status on an order item, skipping
// edge and payload validation. It exists as a deliberate escape hatch and
// is kept apart from Transition so the unsafe path is obvious at call
// sites. It still appends history and publishes the change, but never
// triggers a payout, even when forcing delivered.
func (s *OrderStatusService) ForceStatus(sellerID, orderItemID string, target models.OrderItemStatus, remarks string) (*models.OrderItem, error) {
	item, err := s.loadOwnedItem(sellerID, orderItemID)
	if err != nil {
		return nil, err
	}
	if !target.IsValid() {
		return nil, &InvalidTransitionError{Entity: "order item", From: string(item.Status), To: string(target)}
	}

	oldStatus := item.Status
	if err := s.orderRepo.UpdateStatus(item.ID, target); err != nil {
		return nil, &UpstreamError{Step: "status update", Err: err}
	}
	item.Status = target

	entry := &models.OrderStatusHistory{
		OrderItemID: item.ID,
		OldStatus:   oldStatus,
		NewStatus:   target,
		ChangedBy:   sellerID,
		Remarks:     strings.TrimSpace("forced status override. " + remarks),
	}
	if err := s.orderRepo.AppendHistory(entry); err != nil {
		return nil, &UpstreamError{Step: "history insert", Err: err}
	}

	s.publishStatusChanged(item, oldStatus, true)
	return item, nil
}

// loadOwnedItem fetches an order item and checks the caller owns it.
func (s *OrderStatusService) loadOwnedItem(sellerID, orderItemID string) (*models.OrderItem, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	item, err := s.orderRepo.GetByID(orderItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, &UpstreamError{Step: "order item load", Err: err}
	}
	if item.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	return item, nil
}

// validatePayload checks the extra fields an edge requires. Shipping needs
// a courier partner and consignment number; cancelling needs a reason.
func validatePayload(target models.OrderItemStatus, p models.TransitionPayload) error {
	switch target {
	case models.StatusShipped:
		if strings.TrimSpace(p.CourierPartner) == "" {
			return &MissingFieldError{Field: "courier_partner"}
		}
		if strings.TrimSpace(p.ConsignmentNumber) == "" {
			return &MissingFieldError{Field: "consignment_number"}
		}
	case models.StatusCancelled:
		if strings.TrimSpace(p.Reason) == "" {
			return &MissingFieldError{Field: "reason"}
		}
	}
	return nil
}

// summarizeTransition builds the free-text history remark for an edge.
func summarizeTransition(target models.OrderItemStatus, p models.TransitionPayload) string {
	switch target {
	case models.StatusShipped:
		remark := fmt.Sprintf("shipped via %s (consignment %s)", strings.TrimSpace(p.CourierPartner), strings.TrimSpace(p.ConsignmentNumber))
		if p.EstimatedDelivery != "" {
			remark += ", estimated delivery " + p.EstimatedDelivery
		}
		if p.Notes != "" {
			remark += ". " + p.Notes
		}
		return remark
	case models.StatusCancelled:
		return "cancelled: " + strings.TrimSpace(p.Reason)
	default:
		return "status changed to " + string(target)
	}
}

// publishStatusChanged emits an order.status.changed event. Publishing is
// best effort; failures are logged and the transition stands.
func (s *OrderStatusService) publishStatusChanged(item *models.OrderItem, oldStatus models.OrderItemStatus, forced bool) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping status event.")
		return
	}

	event := map[string]interface{}{
		"type":          "order.status.changed",
		"order_item_id": item.ID,
		"order_id":      item.OrderID,
		"seller_id":     item.SellerID,
		"old_status":    oldStatus,
		"new_status":    item.Status,
		"forced":        forced,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal status event for order item %s: %v", item.ID, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.EventQueue, body); err != nil {
		log.Printf("Warning: Failed to publish status event for order item %s: %v", item.ID, err)
	}
}
