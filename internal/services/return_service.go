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

// RefundStatusInitiated and friends are the states of a refund record,
// separate from the return's own status.
const (
	RefundStatusInitiated = "initiated"
	RefundStatusCompleted = "completed"
	RefundStatusFailed    = "failed"
)

// PickupPayload carries the reverse-logistics details for scheduling a
// return pickup.
type PickupPayload struct {
	CourierPartner    string `json:"courier_partner"`
	ConsignmentNumber string `json:"consignment_number"`
	CourierPhone      string `json:"courier_phone,omitempty"`
	PickupDate        string `json:"pickup_date,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// ReturnService drives the post-delivery return flow. Every mutating
// operation passes the same whitelist guard first: a return whose status is
// outside the seller-mutable set rejects all changes with ErrNotAuthorized,
// regardless of which operation was attempted.
type ReturnService struct {
	returnRepo repositories.ReturnRepository
	orderRepo  repositories.OrderItemRepository
	payouts    payout.Processor
	publisher  rabbitmq.Publisher
}

// NewReturnService creates a new ReturnService. publisher may be nil.
func NewReturnService(returnRepo repositories.ReturnRepository, orderRepo repositories.OrderItemRepository, payouts payout.Processor, publisher rabbitmq.Publisher) *ReturnService {
	return &ReturnService{
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		payouts:    payouts,
		publisher:  publisher,
	}
}

// GetReturn retrieves one of the seller's return requests.
func (s *ReturnService) GetReturn(sellerID, returnID string) (*models.OrderReturn, error) {
	return s.loadOwnedReturn(sellerID, returnID)
}

// ListReturns retrieves the seller's returns, optionally filtered by status.
func (s *ReturnService) ListReturns(sellerID string, status models.ReturnStatus) ([]models.OrderReturn, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("unknown return status: %s", status)
	}
	return s.returnRepo.ListBySeller(sellerID, status)
}

// Tracking retrieves the pickup records of a return.
func (s *ReturnService) Tracking(sellerID, returnID string) ([]models.ReturnTracking, error) {
	if _, err := s.loadOwnedReturn(sellerID, returnID); err != nil {
		return nil, err
	}
	return s.returnRepo.TrackingForReturn(returnID)
}

// QualityChecks retrieves the inspection records of a return.
func (s *ReturnService) QualityChecks(sellerID, returnID string) ([]models.ReturnQualityCheck, error) {
	if _, err := s.loadOwnedReturn(sellerID, returnID); err != nil {
		return nil, err
	}
	return s.returnRepo.QualityChecksForReturn(returnID)
}

// Refund retrieves the refund record of a return, if one exists.
func (s *ReturnService) Refund(sellerID, returnID string) (*models.OrderRefund, error) {
	if _, err := s.loadOwnedReturn(sellerID, returnID); err != nil {
		return nil, err
	}
	return s.returnRepo.RefundForReturn(returnID)
}

// AcceptForReview moves a freshly initiated return into seller review.
func (s *ReturnService) AcceptForReview(sellerID, returnID string) (*models.OrderReturn, error) {
	ret, err := s.loadMutableReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnInitiated {
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnSellerReview)}
	}
	return s.applyStatus(ret, models.ReturnSellerReview)
}

// AssignPickupCourier schedules the reverse pickup. It requires a courier
// partner and consignment number, records them as a tracking row and moves
// the return to pickup_scheduled.
func (s *ReturnService) AssignPickupCourier(sellerID, returnID string, p PickupPayload) (*models.OrderReturn, error) {
	ret, err := s.loadMutableReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnInitiated && ret.Status != models.ReturnSellerReview {
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnPickupScheduled)}
	}
	if strings.TrimSpace(p.CourierPartner) == "" {
		return nil, &MissingFieldError{Field: "courier_partner"}
	}
	if strings.TrimSpace(p.ConsignmentNumber) == "" {
		return nil, &MissingFieldError{Field: "consignment_number"}
	}

	tracking := &models.ReturnTracking{
		ReturnID:          ret.ID,
		CourierPartner:    strings.TrimSpace(p.CourierPartner),
		ConsignmentNumber: strings.TrimSpace(p.ConsignmentNumber),
		CourierPhone:      p.CourierPhone,
		PickupDate:        p.PickupDate,
		Notes:             p.Notes,
	}
	if err := s.returnRepo.AppendTracking(tracking); err != nil {
		return nil, &UpstreamError{Step: "tracking insert", Err: err}
	}
	return s.applyStatus(ret, models.ReturnPickupScheduled)
}

// MarkPickedUp records that the courier collected the item. The return
// moves straight to quality_check, the state the inspection operates on.
func (s *ReturnService) MarkPickedUp(sellerID, returnID string) (*models.OrderReturn, error) {
	ret, err := s.loadMutableReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnPickupScheduled {
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnPickedUp)}
	}
	if _, err := s.applyStatus(ret, models.ReturnPickedUp); err != nil {
		return nil, err
	}
	return s.applyStatus(ret, models.ReturnQualityCheckDue)
}

// PerformQualityCheck records the inspection outcome and resolves the
// return to approved (passed) or rejected (failed). Rejected is terminal.
func (s *ReturnService) PerformQualityCheck(sellerID, returnID, result, remarks string) (*models.OrderReturn, error) {
	ret, err := s.loadMutableReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnPickedUp && ret.Status != models.ReturnQualityCheckDue {
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnApproved)}
	}
	if result != models.QCPassed && result != models.QCFailed {
		return nil, &MissingFieldError{Field: "result"}
	}

	qc := &models.ReturnQualityCheck{
		ReturnID:  ret.ID,
		Result:    result,
		Remarks:   remarks,
		CheckedBy: sellerID,
	}
	if err := s.returnRepo.CreateQualityCheck(qc); err != nil {
		return nil, &UpstreamError{Step: "quality check insert", Err: err}
	}

	target := models.ReturnApproved
	if result == models.QCFailed {
		target = models.ReturnRejected
	}
	return s.applyStatus(ret, target)
}

// InitiateRefund refunds the buyer for an approved return. The amount is
// always the order item's subtotal. The sequence is refund row insert,
// provider call, refund row completion, status write; a failure partway
// leaves the earlier writes in place, so an "initiated" refund row with no
// provider ID marks a refund that needs manual follow-up.
func (s *ReturnService) InitiateRefund(sellerID, returnID string) (*models.OrderReturn, error) {
	ret, err := s.loadMutableReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnApproved {
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnRefunded)}
	}

	item, err := s.orderRepo.GetByID(ret.OrderItemID)
	if err != nil {
		return nil, &UpstreamError{Step: "order item load", Err: err}
	}
	order, err := s.orderRepo.GetOrder(item.OrderID)
	if err != nil {
		return nil, &UpstreamError{Step: "order load", Err: err}
	}

	refund := &models.OrderRefund{
		ReturnID:    ret.ID,
		OrderItemID: item.ID,
		Amount:      item.Subtotal,
		Status:      RefundStatusInitiated,
	}
	if err := s.returnRepo.CreateRefund(refund); err != nil {
		return nil, &UpstreamError{Step: "refund insert", Err: err}
	}

	result, err := s.payouts.ProcessRefund(order.PaymentIntentID, refund.Amount)
	if err != nil {
		return nil, &UpstreamError{Step: "refund execution", Err: err}
	}
	if !result.Success {
		if updErr := s.returnRepo.UpdateRefund(refund.ID, RefundStatusFailed, ""); updErr != nil {
			log.Printf("Failed to mark refund %s as failed: %v", refund.ID, updErr)
		}
		return nil, &UpstreamError{Step: "refund execution", Err: errors.New(result.Message)}
	}

	if err := s.returnRepo.UpdateRefund(refund.ID, RefundStatusCompleted, result.Message); err != nil {
		return nil, &UpstreamError{Step: "refund completion", Err: err}
	}
	return s.applyStatus(ret, models.ReturnRefunded)
}

// CompleteReturn closes out a refunded return.
func (s *ReturnService) CompleteReturn(sellerID, returnID string) (*models.OrderReturn, error) {
	ret, err := s.loadOwnedReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	// refunded sits outside the mutable whitelist, so completion checks the
	// exact status instead of the shared guard.
	if ret.Status != models.ReturnRefunded {
		if !models.IsSellerMutable(ret.Status) {
			return nil, ErrNotAuthorized
		}
		return nil, &InvalidTransitionError{Entity: "return", From: string(ret.Status), To: string(models.ReturnCompleted)}
	}
	return s.applyStatus(ret, models.ReturnCompleted)
}

// applyStatus persists a status write, updates the in-memory copy and
// publishes the change.
func (s *ReturnService) applyStatus(ret *models.OrderReturn, target models.ReturnStatus) (*models.OrderReturn, error) {
	oldStatus := ret.Status
	if err := s.returnRepo.UpdateStatus(ret.ID, target); err != nil {
		return nil, &UpstreamError{Step: "status update", Err: err}
	}
	ret.Status = target
	s.publishReturnUpdated(ret, oldStatus)
	return ret, nil
}

// loadOwnedReturn fetches a return and checks the caller owns it.
func (s *ReturnService) loadOwnedReturn(sellerID, returnID string) (*models.OrderReturn, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	ret, err := s.returnRepo.GetByID(returnID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, &UpstreamError{Step: "return load", Err: err}
	}
	if ret.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	return ret, nil
}

// loadMutableReturn is loadOwnedReturn plus the shared whitelist guard used
// by every mutating return operation.
func (s *ReturnService) loadMutableReturn(sellerID, returnID string) (*models.OrderReturn, error) {
	ret, err := s.loadOwnedReturn(sellerID, returnID)
	if err != nil {
		return nil, err
	}
	if !models.IsSellerMutable(ret.Status) {
		return nil, ErrNotAuthorized
	}
	return ret, nil
}

// publishReturnUpdated emits an order.return.updated event, best effort.
func (s *ReturnService) publishReturnUpdated(ret *models.OrderReturn, oldStatus models.ReturnStatus) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"type":          "order.return.updated",
		"return_id":     ret.ID,
		"order_item_id": ret.OrderItemID,
		"seller_id":     ret.SellerID,
		"old_status":    oldStatus,
		"new_status":    ret.Status,
	})
	if err != nil {
		log.Printf("Failed to marshal return event for %s: %v", ret.ID, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.EventQueue, body); err != nil {
		log.Printf("Warning: Failed to publish return event for %s: %v", ret.ID, err)
	}
}
