package models

import "time"

// Stock level targets for low-stock notifications.
const (
	TargetVariant = "variant"
	TargetBundle  = "bundle"
)

// LowStockNotification is a denormalized alert row created when a variant's
// or bundle's quantity crosses the threshold. It is derived state computed
// on polling, with no exactly-once guarantee.
type LowStockNotification struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SellerID   string    `json:"seller_id" gorm:"index;type:varchar(36)"`
	TargetType string    `json:"target_type" gorm:"type:varchar(10)"`
	TargetID   string    `json:"target_id" gorm:"index;type:varchar(36)"`
	TargetName string    `json:"target_name" gorm:"type:varchar(150)"`
	Quantity   int       `json:"quantity"`
	Threshold  int       `json:"threshold"`
	Level      string    `json:"level" gorm:"type:varchar(10)"` // "low" or "out"
	Seen       bool      `json:"seen" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}
