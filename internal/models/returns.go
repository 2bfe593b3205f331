package models

import (
	"time"

	"gorm.io/gorm"
)

// ReturnStatus is the lifecycle status of a post-delivery return request.
type ReturnStatus string

const (
	ReturnInitiated       ReturnStatus = "initiated"
	ReturnSellerReview    ReturnStatus = "seller_review"
	ReturnPickupScheduled ReturnStatus = "pickup_scheduled"
	ReturnPickedUp        ReturnStatus = "picked_up"
	ReturnQualityCheckDue ReturnStatus = "quality_check"
	ReturnApproved        ReturnStatus = "approved"
	ReturnRejected        ReturnStatus = "rejected"
	ReturnRefunded        ReturnStatus = "refunded"
	ReturnCompleted       ReturnStatus = "completed"
)

// QualityCheckResult is the outcome of the manual return inspection.
const (
	QCPassed = "passed"
	QCFailed = "failed"
)

// IsValid reports whether s is a known return status.
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnInitiated, ReturnSellerReview, ReturnPickupScheduled,
		ReturnPickedUp, ReturnQualityCheckDue, ReturnApproved,
		ReturnRejected, ReturnRefunded, ReturnCompleted:
		return true
	default:
		return false
	}
}

// IsSellerMutable is the shared whitelist guard for the return flow: every
// mutating seller operation checks it before doing anything else, so a
// return in a terminal or unrecognized status rejects all operations alike.
func IsSellerMutable(s ReturnStatus) bool {
	switch s {
	case ReturnInitiated, ReturnSellerReview, ReturnPickupScheduled,
		ReturnPickedUp, ReturnQualityCheckDue, ReturnApproved:
		return true
	default:
		return false
	}
}

// OrderReturn is one return request for an order item. Terminal at
// completed; rejected is also terminal (re-initiation is not exposed).
type OrderReturn struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OrderItemID string       `json:"order_item_id" gorm:"index;type:varchar(36)" validate:"required"`
	SellerID    string       `json:"seller_id" gorm:"index;type:varchar(36)" validate:"required"`
	BuyerID     string       `json:"buyer_id" gorm:"type:varchar(36)"`
	Reason      string       `json:"reason" gorm:"type:text" validate:"required"`
	ReturnType  string       `json:"return_type" gorm:"type:varchar(20)" validate:"required,oneof=return exchange"`
	Status      ReturnStatus `json:"status" gorm:"type:varchar(20);default:'initiated'"`
	gorm.Model
}

// ReturnTracking is an append-only record of the reverse-logistics pickup.
type ReturnTracking struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReturnID          string    `json:"return_id" gorm:"index;type:varchar(36)"`
	CourierPartner    string    `json:"courier_partner" gorm:"type:varchar(100)"`
	ConsignmentNumber string    `json:"consignment_number" gorm:"type:varchar(100)"`
	CourierPhone      string    `json:"courier_phone,omitempty" gorm:"type:varchar(30)"`
	PickupDate        string    `json:"pickup_date,omitempty" gorm:"type:varchar(50)"`
	Notes             string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}

// ReturnQualityCheck is an append-only record of one inspection outcome.
type ReturnQualityCheck struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReturnID  string    `json:"return_id" gorm:"index;type:varchar(36)"`
	Result    string    `json:"result" gorm:"type:varchar(10)"`
	Remarks   string    `json:"remarks" gorm:"type:text"`
	CheckedBy string    `json:"checked_by" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderRefund records a refund issued for a return. The amount is always
// the order item's subtotal, never prorated or partial.
type OrderRefund struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReturnID       string    `json:"return_id" gorm:"index;type:varchar(36)"`
	OrderItemID    string    `json:"order_item_id" gorm:"type:varchar(36)"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status" gorm:"type:varchar(20);default:'initiated'"`
	ProviderRefund string    `json:"provider_refund_id,omitempty" gorm:"type:varchar(64)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
