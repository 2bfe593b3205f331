package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderItemStatus is the lifecycle status of a single order item.
type OrderItemStatus string

const (
	StatusPending   OrderItemStatus = "pending"
	StatusConfirmed OrderItemStatus = "confirmed"
	StatusPacked    OrderItemStatus = "packed"
	StatusShipped   OrderItemStatus = "shipped"
	StatusDelivered OrderItemStatus = "delivered"
	StatusCancelled OrderItemStatus = "cancelled"
	StatusReturned  OrderItemStatus = "returned"
	StatusRefunded  OrderItemStatus = "refunded"
)

// legalNext is the directed edge table for seller-driven transitions.
// Cancellation is allowed from every non-terminal status; delivered,
// cancelled and refunded are terminal.
var legalNext = map[OrderItemStatus]map[OrderItemStatus]bool{
	StatusPending:   {StatusPacked: true, StatusCancelled: true},
	StatusConfirmed: {StatusPacked: true, StatusCancelled: true},
	StatusPacked:    {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusReturned:  {StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// IsValid reports whether s is a known order item status.
func (s OrderItemStatus) IsValid() bool {
	_, ok := legalNext[s]
	return ok
}

// IsTerminal reports whether no further seller transition is possible.
func (s OrderItemStatus) IsTerminal() bool {
	next, ok := legalNext[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the edge s -> target is legal.
func (s OrderItemStatus) CanTransitionTo(target OrderItemStatus) bool {
	return legalNext[s][target]
}

// OrderItem is one seller's line within an order. Quantity and prices are
// immutable after creation; only Status moves, and only along legalNext.
type OrderItem struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OrderID          string          `json:"order_id" gorm:"index;type:varchar(36)" validate:"required"`
	SellerID         string          `json:"seller_id" gorm:"index;type:varchar(36)" validate:"required"`
	ListingVariantID string          `json:"listing_variant_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity         int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice        float64         `json:"unit_price" validate:"required,gt=0"`
	Subtotal         float64         `json:"subtotal" validate:"required,gt=0"`
	Status           OrderItemStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	gorm.Model
}

// Order aggregates order items, possibly across multiple sellers. Buyers
// own the read side; sellers only ever touch the status of their own items.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	BuyerID           string      `json:"buyer_id" gorm:"index;type:varchar(36)" validate:"required"`
	ShippingAddressID string      `json:"shipping_address_id" gorm:"type:varchar(36)"`
	TotalAmount       float64     `json:"total_amount" validate:"gte=0"`
	DiscountAmount    float64     `json:"discount_amount" validate:"gte=0"`
	ShippingCost      float64     `json:"shipping_cost" validate:"gte=0"`
	FinalAmount       float64     `json:"final_amount" validate:"gte=0"`
	PaymentIntentID   string      `json:"payment_intent_id,omitempty" gorm:"type:varchar(64)"`
	Items             []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	gorm.Model
}

// ValidateTotals checks the amount invariant. The store does not enforce it,
// so every write path has to.
func (o *Order) ValidateTotals() error {
	want := o.TotalAmount - o.DiscountAmount + o.ShippingCost
	if diff := o.FinalAmount - want; diff > 0.009 || diff < -0.009 {
		return fmt.Errorf("final_amount %.2f does not match total - discount + shipping = %.2f", o.FinalAmount, want)
	}
	return nil
}

// OrderStatusHistory is an append-only log row, one per transition. Rows are
// never updated or deleted.
type OrderStatusHistory struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderItemID string          `json:"order_item_id" gorm:"index;type:varchar(36)"`
	OldStatus   OrderItemStatus `json:"old_status" gorm:"type:varchar(20)"`
	NewStatus   OrderItemStatus `json:"new_status" gorm:"type:varchar(20)"`
	ChangedBy   string          `json:"changed_by" gorm:"type:varchar(36)"`
	Remarks     string          `json:"remarks" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderTracking stores the courier annotation written on the shipped
// transition. Everything beyond partner and consignment number is free text.
type OrderTracking struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderItemID       string    `json:"order_item_id" gorm:"index;type:varchar(36)"`
	CourierPartner    string    `json:"courier_partner" gorm:"type:varchar(100)"`
	ConsignmentNumber string    `json:"consignment_number" gorm:"type:varchar(100)"`
	CourierPhone      string    `json:"courier_phone,omitempty" gorm:"type:varchar(30)"`
	EstimatedDelivery string    `json:"estimated_delivery,omitempty" gorm:"type:varchar(50)"`
	PickupDate        string    `json:"pickup_date,omitempty" gorm:"type:varchar(50)"`
	Instructions      string    `json:"instructions,omitempty" gorm:"type:text"`
	Notes             string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}

// OrderCancellation records the reason given on a cancelled transition.
type OrderCancellation struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderItemID string    `json:"order_item_id" gorm:"index;type:varchar(36)"`
	Reason      string    `json:"reason" gorm:"type:text"`
	CancelledBy string    `json:"cancelled_by" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransitionPayload carries the optional and required extras for a status
// transition. Which fields are required depends on the target status.
type TransitionPayload struct {
	CourierPartner    string `json:"courier_partner,omitempty"`
	ConsignmentNumber string `json:"consignment_number,omitempty"`
	CourierPhone      string `json:"courier_phone,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
	PickupDate        string `json:"pickup_date,omitempty"`
	Instructions      string `json:"instructions,omitempty"`
	Notes             string `json:"notes,omitempty"`
	Reason            string `json:"reason,omitempty"`
}
