package repositories

import (
	"fmt"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderItemRepository is a GORM implementation of OrderItemRepository.
type GORMOrderItemRepository struct {
	db *gorm.DB
}

// NewGORMOrderItemRepository creates a new instance of GORMOrderItemRepository.
func NewGORMOrderItemRepository(db *gorm.DB) *GORMOrderItemRepository {
	return &GORMOrderItemRepository{
		db: db,
	}
}

// GetByID retrieves a single order item by its ID from the database.
func (r *GORMOrderItemRepository) GetByID(id string) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order item with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order item by ID %s: %w", id, err)
	}
	return &item, nil
}

// ListBySeller retrieves a seller's order items, optionally filtered by status.
func (r *GORMOrderItemRepository) ListBySeller(sellerID string, status models.OrderItemStatus) ([]models.OrderItem, error) {
	var items []models.OrderItem
	query := r.db.Where("seller_id = ?", sellerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list order items for seller %s: %w", sellerID, err)
	}
	return items, nil
}

// CreateOrder creates an order together with its items.
func (r *GORMOrderItemRepository) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order with its items.
func (r *GORMOrderItemRepository) GetOrder(orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	return &order, nil
}

// UpdateStatus writes the new status on an order item. It does not check
// edge legality; that is the status engine's job.
func (r *GORMOrderItemRepository) UpdateStatus(id string, status models.OrderItemStatus) error {
	res := r.db.Model(&models.OrderItem{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order item with ID %s not found for status update", id)
	}
	return nil
}

// AppendHistory inserts one status history row. History rows are never
// updated or deleted.
func (r *GORMOrderItemRepository) AppendHistory(entry *models.OrderStatusHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append status history for order item %s: %w", entry.OrderItemID, err)
	}
	return nil
}

// HistoryForItem retrieves the status history of an order item, oldest first.
func (r *GORMOrderItemRepository) HistoryForItem(orderItemID string) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	if err := r.db.Where("order_item_id = ?", orderItemID).Order("created_at ASC").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to get status history for order item %s: %w", orderItemID, err)
	}
	return history, nil
}

// AppendTracking inserts one courier annotation row.
func (r *GORMOrderItemRepository) AppendTracking(tracking *models.OrderTracking) error {
	if tracking.ID == "" {
		tracking.ID = uuid.New().String()
	}
	if tracking.CreatedAt.IsZero() {
		tracking.CreatedAt = time.Now()
	}
	if err := r.db.Create(tracking).Error; err != nil {
		return fmt.Errorf("failed to append tracking for order item %s: %w", tracking.OrderItemID, err)
	}
	return nil
}

// TrackingForItem retrieves the courier annotations of an order item.
func (r *GORMOrderItemRepository) TrackingForItem(orderItemID string) ([]models.OrderTracking, error) {
	var tracking []models.OrderTracking
	if err := r.db.Where("order_item_id = ?", orderItemID).Order("created_at ASC").Find(&tracking).Error; err != nil {
		return nil, fmt.Errorf("failed to get tracking for order item %s: %w", orderItemID, err)
	}
	return tracking, nil
}

// CreateCancellation inserts one cancellation record.
func (r *GORMOrderItemRepository) CreateCancellation(cancellation *models.OrderCancellation) error {
	if cancellation.ID == "" {
		cancellation.ID = uuid.New().String()
	}
	if cancellation.CreatedAt.IsZero() {
		cancellation.CreatedAt = time.Now()
	}
	if err := r.db.Create(cancellation).Error; err != nil {
		return fmt.Errorf("failed to create cancellation for order item %s: %w", cancellation.OrderItemID, err)
	}
	return nil
}
