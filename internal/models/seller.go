package models

import "gorm.io/gorm"

// Seller represents a seller account on the platform.
type Seller struct {
	ID              string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username        string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email           string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	StoreName       string `json:"store_name" gorm:"type:varchar(150)" validate:"required,min=2,max=150"`
	Password        string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	StripeAccountID string `json:"stripe_account_id,omitempty" gorm:"type:varchar(64)"`
	gorm.Model
}
