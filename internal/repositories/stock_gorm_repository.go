package repositories

import (
	"fmt"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMVariantRepository is a GORM implementation of VariantRepository.
type GORMVariantRepository struct {
	db *gorm.DB
}

// NewGORMVariantRepository creates a new instance of GORMVariantRepository.
func NewGORMVariantRepository(db *gorm.DB) *GORMVariantRepository {
	return &GORMVariantRepository{
		db: db,
	}
}

// GetByID retrieves a single variant by its ID from the database.
func (r *GORMVariantRepository) GetByID(id string) (*models.ListingVariant, error) {
	var variant models.ListingVariant
	if err := r.db.First(&variant, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("variant with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get variant by ID %s: %w", id, err)
	}
	return &variant, nil
}

// GetByIDs retrieves several variants at once.
func (r *GORMVariantRepository) GetByIDs(ids []string) ([]models.ListingVariant, error) {
	var variants []models.ListingVariant
	if err := r.db.Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to get variants by IDs: %w", err)
	}
	return variants, nil
}

// ListBySeller retrieves all variants owned by a seller.
func (r *GORMVariantRepository) ListBySeller(sellerID string) ([]models.ListingVariant, error) {
	var variants []models.ListingVariant
	if err := r.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to list variants for seller %s: %w", sellerID, err)
	}
	return variants, nil
}

// Create inserts a new variant.
func (r *GORMVariantRepository) Create(variant *models.ListingVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	if err := r.db.Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// UpdateStockQuantity writes a precomputed stock quantity. The caller does
// the read-modify-write, so two concurrent restocks can lose an update;
// that matches the observed behavior and is deliberate.
func (r *GORMVariantRepository) UpdateStockQuantity(id string, quantity int) error {
	res := r.db.Model(&models.ListingVariant{}).Where("id = ?", id).Update("stock_quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update stock for variant %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s not found for stock update", id)
	}
	return nil
}

// SetAvailability flips a variant's availability flag.
func (r *GORMVariantRepository) SetAvailability(id string, available bool) error {
	res := r.db.Model(&models.ListingVariant{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return fmt.Errorf("failed to set availability for variant %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s not found for availability update", id)
	}
	return nil
}

// GORMBundleRepository is a GORM implementation of BundleRepository.
type GORMBundleRepository struct {
	db *gorm.DB
}

// NewGORMBundleRepository creates a new instance of GORMBundleRepository.
func NewGORMBundleRepository(db *gorm.DB) *GORMBundleRepository {
	return &GORMBundleRepository{
		db: db,
	}
}

// GetByID retrieves a bundle with its items.
func (r *GORMBundleRepository) GetByID(id string) (*models.Bundle, error) {
	var bundle models.Bundle
	if err := r.db.Preload("Items").First(&bundle, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("bundle with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bundle by ID %s: %w", id, err)
	}
	return &bundle, nil
}

// ListBySeller retrieves all bundles owned by a seller, items included.
func (r *GORMBundleRepository) ListBySeller(sellerID string) ([]models.Bundle, error) {
	var bundles []models.Bundle
	if err := r.db.Preload("Items").Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bundles for seller %s: %w", sellerID, err)
	}
	return bundles, nil
}

// Create inserts a new bundle together with its items.
func (r *GORMBundleRepository) Create(bundle *models.Bundle) error {
	if bundle.ID == "" {
		bundle.ID = uuid.New().String()
	}
	for i := range bundle.Items {
		if bundle.Items[i].ID == "" {
			bundle.Items[i].ID = uuid.New().String()
		}
		bundle.Items[i].BundleID = bundle.ID
	}
	if err := r.db.Create(bundle).Error; err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	return nil
}

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{
		db: db,
	}
}

// Create inserts a new low-stock notification row.
func (r *GORMNotificationRepository) Create(notification *models.LowStockNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create low-stock notification: %w", err)
	}
	return nil
}

// ListBySeller retrieves a seller's notifications, newest first.
func (r *GORMNotificationRepository) ListBySeller(sellerID string, unseenOnly bool) ([]models.LowStockNotification, error) {
	var notifications []models.LowStockNotification
	query := r.db.Where("seller_id = ?", sellerID)
	if unseenOnly {
		query = query.Where("seen = ?", false)
	}
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for seller %s: %w", sellerID, err)
	}
	return notifications, nil
}

// LatestUnseenForTarget finds an open notification for a target, used to
// avoid stacking duplicate alerts for the same variant or bundle.
func (r *GORMNotificationRepository) LatestUnseenForTarget(targetType, targetID string) (*models.LowStockNotification, error) {
	var notification models.LowStockNotification
	err := r.db.Where("target_type = ? AND target_id = ? AND seen = ?", targetType, targetID, false).
		Order("created_at DESC").First(&notification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no unseen notification for %s %s: %w", targetType, targetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification for %s %s: %w", targetType, targetID, err)
	}
	return &notification, nil
}

// MarkSeen flags a notification as seen.
func (r *GORMNotificationRepository) MarkSeen(id string) error {
	res := r.db.Model(&models.LowStockNotification{}).Where("id = ?", id).Update("seen", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s seen: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s %w", id, ErrNotFound)
	}
	return nil
}
