package repositories

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockReturnRepository is an in-memory implementation of ReturnRepository.
type MockReturnRepository struct {
	returns  map[string]models.OrderReturn
	tracking map[string][]models.ReturnTracking
	checks   map[string][]models.ReturnQualityCheck
	refunds  map[string]models.OrderRefund // keyed by return ID
	mu       sync.RWMutex
}

// NewMockReturnRepository creates a new instance of MockReturnRepository.
func NewMockReturnRepository() *MockReturnRepository {
	return &MockReturnRepository{
		returns:  make(map[string]models.OrderReturn),
		tracking: make(map[string][]models.ReturnTracking),
		checks:   make(map[string][]models.ReturnQualityCheck),
		refunds:  make(map[string]models.OrderRefund),
	}
}

// GetByID returns a return request by its ID.
func (r *MockReturnRepository) GetByID(id string) (*models.OrderReturn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret, ok := r.returns[id]
	if !ok {
		return nil, fmt.Errorf("return with ID %s %w", id, ErrNotFound)
	}
	return &ret, nil
}

// ListBySeller returns a seller's returns, optionally filtered by status.
func (r *MockReturnRepository) ListBySeller(sellerID string, status models.ReturnStatus) ([]models.OrderReturn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	returns := make([]models.OrderReturn, 0)
	for _, ret := range r.returns {
		if ret.SellerID != sellerID {
			continue
		}
		if status != "" && ret.Status != status {
			continue
		}
		returns = append(returns, ret)
	}
	return returns, nil
}

// Create adds a new return request.
func (r *MockReturnRepository) Create(ret *models.OrderReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ret.ID == "" {
		ret.ID = uuid.New().String()
	}
	if ret.Status == "" {
		ret.Status = models.ReturnInitiated
	}
	ret.CreatedAt = time.Now()
	ret.UpdatedAt = time.Now()
	r.returns[ret.ID] = *ret
	return nil
}

// UpdateStatus updates the status of a return request.
func (r *MockReturnRepository) UpdateStatus(id string, status models.ReturnStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret, ok := r.returns[id]
	if !ok {
		return fmt.Errorf("return with ID %s not found for status update", id)
	}
	ret.Status = status
	ret.UpdatedAt = time.Now()
	r.returns[id] = ret
	return nil
}

// AppendTracking appends one pickup tracking row.
func (r *MockReturnRepository) AppendTracking(tracking *models.ReturnTracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracking.ID == "" {
		tracking.ID = uuid.New().String()
	}
	if tracking.CreatedAt.IsZero() {
		tracking.CreatedAt = time.Now()
	}
	r.tracking[tracking.ReturnID] = append(r.tracking[tracking.ReturnID], *tracking)
	return nil
}

// TrackingForReturn returns the pickup tracking rows of a return.
func (r *MockReturnRepository) TrackingForReturn(returnID string) ([]models.ReturnTracking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracking := make([]models.ReturnTracking, len(r.tracking[returnID]))
	copy(tracking, r.tracking[returnID])
	return tracking, nil
}

// CreateQualityCheck appends one inspection record.
func (r *MockReturnRepository) CreateQualityCheck(qc *models.ReturnQualityCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if qc.ID == "" {
		qc.ID = uuid.New().String()
	}
	if qc.CreatedAt.IsZero() {
		qc.CreatedAt = time.Now()
	}
	r.checks[qc.ReturnID] = append(r.checks[qc.ReturnID], *qc)
	return nil
}

// QualityChecksForReturn returns the inspection records of a return.
func (r *MockReturnRepository) QualityChecksForReturn(returnID string) ([]models.ReturnQualityCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	checks := make([]models.ReturnQualityCheck, len(r.checks[returnID]))
	copy(checks, r.checks[returnID])
	return checks, nil
}

// CreateRefund records one refund.
func (r *MockReturnRepository) CreateRefund(refund *models.OrderRefund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now()
	}
	refund.UpdatedAt = refund.CreatedAt
	r.refunds[refund.ReturnID] = *refund
	return nil
}

// UpdateRefund updates a refund's status and provider reference.
func (r *MockReturnRepository) UpdateRefund(id string, status string, providerRefundID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for returnID, refund := range r.refunds {
		if refund.ID == id {
			refund.Status = status
			if providerRefundID != "" {
				refund.ProviderRefund = providerRefundID
			}
			refund.UpdatedAt = time.Now()
			r.refunds[returnID] = refund
			return nil
		}
	}
	return fmt.Errorf("refund with ID %s not found for update", id)
}

// RefundForReturn returns the refund record of a return, if any.
func (r *MockReturnRepository) RefundForReturn(returnID string) (*models.OrderRefund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refund, ok := r.refunds[returnID]
	if !ok {
		return nil, fmt.Errorf("refund for return %s %w", returnID, ErrNotFound)
	}
	return &refund, nil
}
