package repositories

import (
	"lapak/internal/models"
)

// ReturnRepository defines the interface for return request data access,
// covering the return row itself plus its append-only tracking, quality
// check and refund sub-records.
type ReturnRepository interface {
	GetByID(id string) (*models.OrderReturn, error)
	ListBySeller(sellerID string, status models.ReturnStatus) ([]models.OrderReturn, error)
	Create(ret *models.OrderReturn) error
	UpdateStatus(id string, status models.ReturnStatus) error
	AppendTracking(tracking *models.ReturnTracking) error
	TrackingForReturn(returnID string) ([]models.ReturnTracking, error)
	CreateQualityCheck(qc *models.ReturnQualityCheck) error
	QualityChecksForReturn(returnID string) ([]models.ReturnQualityCheck, error)
	CreateRefund(refund *models.OrderRefund) error
	UpdateRefund(id string, status string, providerRefundID string) error
	RefundForReturn(returnID string) (*models.OrderRefund, error)
}
