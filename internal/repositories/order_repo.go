package repositories

import (
	"errors"

	"lapak/internal/models"
)

// ErrNotFound is wrapped by every repository when a referenced record does
// not exist, so callers can tell absence apart from store failures.
var ErrNotFound = errors.New("not found")

// OrderItemRepository defines the interface for order item data access,
// including the append-only history, tracking and cancellation tables.
type OrderItemRepository interface {
	GetByID(id string) (*models.OrderItem, error)
	ListBySeller(sellerID string, status models.OrderItemStatus) ([]models.OrderItem, error)
	CreateOrder(order *models.Order) error
	GetOrder(orderID string) (*models.Order, error)
	UpdateStatus(id string, status models.OrderItemStatus) error
	AppendHistory(entry *models.OrderStatusHistory) error
	HistoryForItem(orderItemID string) ([]models.OrderStatusHistory, error)
	AppendTracking(tracking *models.OrderTracking) error
	TrackingForItem(orderItemID string) ([]models.OrderTracking, error)
	CreateCancellation(cancellation *models.OrderCancellation) error
}
