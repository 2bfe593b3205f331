package repositories

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockOrderItemRepository is an in-memory implementation of OrderItemRepository.
type MockOrderItemRepository struct {
	orders        map[string]models.Order
	items         map[string]models.OrderItem
	history       map[string][]models.OrderStatusHistory
	tracking      map[string][]models.OrderTracking
	cancellations map[string][]models.OrderCancellation
	mu            sync.RWMutex
}

// NewMockOrderItemRepository creates a new instance of MockOrderItemRepository.
func NewMockOrderItemRepository() *MockOrderItemRepository {
	return &MockOrderItemRepository{
		orders:        make(map[string]models.Order),
		items:         make(map[string]models.OrderItem),
		history:       make(map[string][]models.OrderStatusHistory),
		tracking:      make(map[string][]models.OrderTracking),
		cancellations: make(map[string][]models.OrderCancellation),
	}
}

// GetByID returns an order item by its ID.
func (r *MockOrderItemRepository) GetByID(id string) (*models.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("order item with ID %s %w", id, ErrNotFound)
	}
	return &item, nil
}

// ListBySeller returns a seller's order items, optionally filtered by status.
func (r *MockOrderItemRepository) ListBySeller(sellerID string, status models.OrderItemStatus) ([]models.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.OrderItem, 0)
	for _, item := range r.items {
		if item.SellerID != sellerID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateOrder adds an order together with its items.
func (r *MockOrderItemRepository) CreateOrder(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		if order.Items[i].Status == "" {
			order.Items[i].Status = models.StatusPending
		}
		r.items[order.Items[i].ID] = order.Items[i]
	}
	r.orders[order.ID] = *order
	return nil
}

// GetOrder returns an order with its items.
func (r *MockOrderItemRepository) GetOrder(orderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order with ID %s %w", orderID, ErrNotFound)
	}
	order.Items = nil
	for _, item := range r.items {
		if item.OrderID == orderID {
			order.Items = append(order.Items, item)
		}
	}
	return &order, nil
}

// UpdateStatus updates the status of an order item.
func (r *MockOrderItemRepository) UpdateStatus(id string, status models.OrderItemStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("order item with ID %s not found for status update", id)
	}
	item.Status = status
	item.UpdatedAt = time.Now()
	r.items[id] = item
	return nil
}

// AppendHistory appends one status history row.
func (r *MockOrderItemRepository) AppendHistory(entry *models.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.history[entry.OrderItemID] = append(r.history[entry.OrderItemID], *entry)
	return nil
}

// HistoryForItem returns the status history of an order item.
func (r *MockOrderItemRepository) HistoryForItem(orderItemID string) ([]models.OrderStatusHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]models.OrderStatusHistory, len(r.history[orderItemID]))
	copy(history, r.history[orderItemID])
	return history, nil
}

// AppendTracking appends one courier annotation row.
func (r *MockOrderItemRepository) AppendTracking(tracking *models.OrderTracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracking.ID == "" {
		tracking.ID = uuid.New().String()
	}
	if tracking.CreatedAt.IsZero() {
		tracking.CreatedAt = time.Now()
	}
	r.tracking[tracking.OrderItemID] = append(r.tracking[tracking.OrderItemID], *tracking)
	return nil
}

// TrackingForItem returns the courier annotations of an order item.
func (r *MockOrderItemRepository) TrackingForItem(orderItemID string) ([]models.OrderTracking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracking := make([]models.OrderTracking, len(r.tracking[orderItemID]))
	copy(tracking, r.tracking[orderItemID])
	return tracking, nil
}

// CreateCancellation records one cancellation.
func (r *MockOrderItemRepository) CreateCancellation(cancellation *models.OrderCancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancellation.ID == "" {
		cancellation.ID = uuid.New().String()
	}
	if cancellation.CreatedAt.IsZero() {
		cancellation.CreatedAt = time.Now()
	}
	r.cancellations[cancellation.OrderItemID] = append(r.cancellations[cancellation.OrderItemID], *cancellation)
	return nil
}
