package models

import "gorm.io/gorm"

// ListingVariant is a sellable SKU under a product listing. StockQuantity
// is mutated by restocks (and decremented by order placement outside this
// service); bundle stock is always derived from it, never stored.
type ListingVariant struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID      string  `json:"seller_id" gorm:"index;type:varchar(36)" validate:"required"`
	ListingID     string  `json:"listing_id" gorm:"index;type:varchar(36)"`
	SKU           string  `json:"sku" gorm:"type:varchar(64)" validate:"required,min=1,max=64"`
	Name          string  `json:"name" gorm:"type:varchar(150)" validate:"required,min=1,max=150"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	IsAvailable   bool    `json:"is_available" gorm:"default:true"`
	gorm.Model
}

// Bundle is a composite sellable unit made of fixed quantities of existing
// variants. It has no stock of its own; the effective quantity is the
// minimum of floor(variant stock / required quantity) over its items.
type Bundle struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID    string       `json:"seller_id" gorm:"index;type:varchar(36)" validate:"required"`
	Name        string       `json:"name" gorm:"type:varchar(150)" validate:"required,min=1,max=150"`
	Description string       `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=500"`
	Price       float64      `json:"price" validate:"required,gt=0"`
	IsAvailable bool         `json:"is_available" gorm:"default:true"`
	Items       []BundleItem `json:"items,omitempty" gorm:"foreignKey:BundleID"`
	gorm.Model
}

// BundleItem links a bundle to one variant with the quantity required for a
// single complete bundle.
type BundleItem struct {
	ID               string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BundleID         string `json:"bundle_id" gorm:"index;type:varchar(36)"`
	ListingVariantID string `json:"listing_variant_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,gt=0"`
	gorm.Model
}
