package repositories

import (
	"lapak/internal/models"
)

// VariantRepository defines the interface for listing variant data access.
// Stock updates are plain writes of a precomputed value; callers do the
// read-modify-write themselves.
type VariantRepository interface {
	GetByID(id string) (*models.ListingVariant, error)
	GetByIDs(ids []string) ([]models.ListingVariant, error)
	ListBySeller(sellerID string) ([]models.ListingVariant, error)
	Create(variant *models.ListingVariant) error
	UpdateStockQuantity(id string, quantity int) error
	SetAvailability(id string, available bool) error
}

// BundleRepository defines the interface for bundle data access. Bundles
// are loaded with their items; effective stock is never persisted.
type BundleRepository interface {
	GetByID(id string) (*models.Bundle, error)
	ListBySeller(sellerID string) ([]models.Bundle, error)
	Create(bundle *models.Bundle) error
}

// NotificationRepository defines the interface for low-stock alert rows.
type NotificationRepository interface {
	Create(notification *models.LowStockNotification) error
	ListBySeller(sellerID string, unseenOnly bool) ([]models.LowStockNotification, error)
	LatestUnseenForTarget(targetType, targetID string) (*models.LowStockNotification, error)
	MarkSeen(id string) error
}
