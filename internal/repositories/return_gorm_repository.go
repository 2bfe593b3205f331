package repositories

import (
	"fmt"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReturnRepository is a GORM implementation of ReturnRepository.
type GORMReturnRepository struct {
	db *gorm.DB
}

// NewGORMReturnRepository creates a new instance of GORMReturnRepository.
func NewGORMReturnRepository(db *gorm.DB) *GORMReturnRepository {
	return &GORMReturnRepository{
		db: db,
	}
}

// GetByID retrieves a single return request by its ID from the database.
func (r *GORMReturnRepository) GetByID(id string) (*models.OrderReturn, error) {
	var ret models.OrderReturn
	if err := r.db.First(&ret, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("return with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get return by ID %s: %w", id, err)
	}
	return &ret, nil
}

// ListBySeller retrieves a seller's returns, optionally filtered by status.
func (r *GORMReturnRepository) ListBySeller(sellerID string, status models.ReturnStatus) ([]models.OrderReturn, error) {
	var returns []models.OrderReturn
	query := r.db.Where("seller_id = ?", sellerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to list returns for seller %s: %w", sellerID, err)
	}
	return returns, nil
}

// Create inserts a new return request.
func (r *GORMReturnRepository) Create(ret *models.OrderReturn) error {
	if ret.ID == "" {
		ret.ID = uuid.New().String()
	}
	if ret.Status == "" {
		ret.Status = models.ReturnInitiated
	}
	if err := r.db.Create(ret).Error; err != nil {
		return fmt.Errorf("failed to create return: %w", err)
	}
	return nil
}

// UpdateStatus writes the new status on a return request.
func (r *GORMReturnRepository) UpdateStatus(id string, status models.ReturnStatus) error {
	res := r.db.Model(&models.OrderReturn{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for return %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("return with ID %s not found for status update", id)
	}
	return nil
}

// AppendTracking inserts one pickup tracking row.
func (r *GORMReturnRepository) AppendTracking(tracking *models.ReturnTracking) error {
	if tracking.ID == "" {
		tracking.ID = uuid.New().String()
	}
	if tracking.CreatedAt.IsZero() {
		tracking.CreatedAt = time.Now()
	}
	if err := r.db.Create(tracking).Error; err != nil {
		return fmt.Errorf("failed to append tracking for return %s: %w", tracking.ReturnID, err)
	}
	return nil
}

// TrackingForReturn retrieves the pickup tracking rows of a return.
func (r *GORMReturnRepository) TrackingForReturn(returnID string) ([]models.ReturnTracking, error) {
	var tracking []models.ReturnTracking
	if err := r.db.Where("return_id = ?", returnID).Order("created_at ASC").Find(&tracking).Error; err != nil {
		return nil, fmt.Errorf("failed to get tracking for return %s: %w", returnID, err)
	}
	return tracking, nil
}

// CreateQualityCheck inserts one inspection record.
func (r *GORMReturnRepository) CreateQualityCheck(qc *models.ReturnQualityCheck) error {
	if qc.ID == "" {
		qc.ID = uuid.New().String()
	}
	if qc.CreatedAt.IsZero() {
		qc.CreatedAt = time.Now()
	}
	if err := r.db.Create(qc).Error; err != nil {
		return fmt.Errorf("failed to create quality check for return %s: %w", qc.ReturnID, err)
	}
	return nil
}

// QualityChecksForReturn retrieves the inspection records of a return.
func (r *GORMReturnRepository) QualityChecksForReturn(returnID string) ([]models.ReturnQualityCheck, error) {
	var checks []models.ReturnQualityCheck
	if err := r.db.Where("return_id = ?", returnID).Order("created_at ASC").Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("failed to get quality checks for return %s: %w", returnID, err)
	}
	return checks, nil
}

// CreateRefund inserts one refund record.
func (r *GORMReturnRepository) CreateRefund(refund *models.OrderRefund) error {
	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now()
	}
	if err := r.db.Create(refund).Error; err != nil {
		return fmt.Errorf("failed to create refund for return %s: %w", refund.ReturnID, err)
	}
	return nil
}

// UpdateRefund updates a refund's status and provider reference.
func (r *GORMReturnRepository) UpdateRefund(id string, status string, providerRefundID string) error {
	updates := map[string]interface{}{"status": status, "updated_at": time.Now()}
	if providerRefundID != "" {
		updates["provider_refund"] = providerRefundID
	}
	res := r.db.Model(&models.OrderRefund{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update refund %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("refund with ID %s not found for update", id)
	}
	return nil
}

// RefundForReturn retrieves the refund record of a return, if any.
func (r *GORMReturnRepository) RefundForReturn(returnID string) (*models.OrderRefund, error) {
	var refund models.OrderRefund
	if err := r.db.First(&refund, "return_id = ?", returnID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("refund for return %s %w", returnID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get refund for return %s: %w", returnID, err)
	}
	return &refund, nil
}
