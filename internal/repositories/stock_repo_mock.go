package repositories

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockVariantRepository is an in-memory implementation of VariantRepository.
type MockVariantRepository struct {
	variants map[string]models.ListingVariant
	mu       sync.RWMutex
}

// NewMockVariantRepository creates a new instance of MockVariantRepository.
func NewMockVariantRepository() *MockVariantRepository {
	return &MockVariantRepository{
		variants: make(map[string]models.ListingVariant),
	}
}

// GetByID returns a variant by its ID.
func (r *MockVariantRepository) GetByID(id string) (*models.ListingVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("variant with ID %s %w", id, ErrNotFound)
	}
	return &variant, nil
}

// GetByIDs returns several variants at once. Missing IDs are skipped.
func (r *MockVariantRepository) GetByIDs(ids []string) ([]models.ListingVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variants := make([]models.ListingVariant, 0, len(ids))
	for _, id := range ids {
		if variant, ok := r.variants[id]; ok {
			variants = append(variants, variant)
		}
	}
	return variants, nil
}

// ListBySeller returns all variants owned by a seller.
func (r *MockVariantRepository) ListBySeller(sellerID string) ([]models.ListingVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variants := make([]models.ListingVariant, 0)
	for _, variant := range r.variants {
		if variant.SellerID == sellerID {
			variants = append(variants, variant)
		}
	}
	return variants, nil
}

// Create adds a new variant.
func (r *MockVariantRepository) Create(variant *models.ListingVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	variant.CreatedAt = time.Now()
	variant.UpdatedAt = time.Now()
	r.variants[variant.ID] = *variant
	return nil
}

// UpdateStockQuantity writes a precomputed stock quantity.
func (r *MockVariantRepository) UpdateStockQuantity(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	variant, ok := r.variants[id]
	if !ok {
		return fmt.Errorf("variant with ID %s not found for stock update", id)
	}
	variant.StockQuantity = quantity
	variant.UpdatedAt = time.Now()
	r.variants[id] = variant
	return nil
}

// SetAvailability flips a variant's availability flag.
func (r *MockVariantRepository) SetAvailability(id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	variant, ok := r.variants[id]
	if !ok {
		return fmt.Errorf("variant with ID %s not found for availability update", id)
	}
	variant.IsAvailable = available
	variant.UpdatedAt = time.Now()
	r.variants[id] = variant
	return nil
}

// MockBundleRepository is an in-memory implementation of BundleRepository.
type MockBundleRepository struct {
	bundles map[string]models.Bundle
	mu      sync.RWMutex
}

// NewMockBundleRepository creates a new instance of MockBundleRepository.
func NewMockBundleRepository() *MockBundleRepository {
	return &MockBundleRepository{
		bundles: make(map[string]models.Bundle),
	}
}

// GetByID returns a bundle with its items.
func (r *MockBundleRepository) GetByID(id string) (*models.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundle, ok := r.bundles[id]
	if !ok {
		return nil, fmt.Errorf("bundle with ID %s %w", id, ErrNotFound)
	}
	return &bundle, nil
}

// ListBySeller returns all bundles owned by a seller.
func (r *MockBundleRepository) ListBySeller(sellerID string) ([]models.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bundles := make([]models.Bundle, 0)
	for _, bundle := range r.bundles {
		if bundle.SellerID == sellerID {
			bundles = append(bundles, bundle)
		}
	}
	return bundles, nil
}

// Create adds a new bundle together with its items.
func (r *MockBundleRepository) Create(bundle *models.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bundle.ID == "" {
		bundle.ID = uuid.New().String()
	}
	for i := range bundle.Items {
		if bundle.Items[i].ID == "" {
			bundle.Items[i].ID = uuid.New().String()
		}
		bundle.Items[i].BundleID = bundle.ID
	}
	bundle.CreatedAt = time.Now()
	bundle.UpdatedAt = time.Now()
	r.bundles[bundle.ID] = *bundle
	return nil
}

// MockNotificationRepository is an in-memory implementation of NotificationRepository.
type MockNotificationRepository struct {
	notifications map[string]models.LowStockNotification
	mu            sync.RWMutex
}

// NewMockNotificationRepository creates a new instance of MockNotificationRepository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]models.LowStockNotification),
	}
}

// Create adds a low-stock notification row.
func (r *MockNotificationRepository) Create(notification *models.LowStockNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.notifications[notification.ID] = *notification
	return nil
}

// ListBySeller returns a seller's notifications.
func (r *MockNotificationRepository) ListBySeller(sellerID string, unseenOnly bool) ([]models.LowStockNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notifications := make([]models.LowStockNotification, 0)
	for _, notification := range r.notifications {
		if notification.SellerID != sellerID {
			continue
		}
		if unseenOnly && notification.Seen {
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

// LatestUnseenForTarget finds an open notification for a target.
func (r *MockNotificationRepository) LatestUnseenForTarget(targetType, targetID string) (*models.LowStockNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.LowStockNotification
	for _, notification := range r.notifications {
		if notification.TargetType != targetType || notification.TargetID != targetID || notification.Seen {
			continue
		}
		n := notification
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = &n
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no unseen notification for %s %s: %w", targetType, targetID, ErrNotFound)
	}
	return latest, nil
}

// MarkSeen flags a notification as seen.
func (r *MockNotificationRepository) MarkSeen(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification with ID %s %w", id, ErrNotFound)
	}
	notification.Seen = true
	r.notifications[id] = notification
	return nil
}
