package repositories_test

import (
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/stretchr/testify/assert"
)

// The in-memory repositories back broker-less local runs and are expected
// to honor the same contract as the GORM ones, the ErrNotFound sentinel
// included.

func TestMockOrderItemRepository(t *testing.T) {
	repo := repositories.NewMockOrderItemRepository()

	order := &models.Order{
		BuyerID:         "buyer-1",
		TotalAmount:     50,
		FinalAmount:     50,
		PaymentIntentID: "pi_1",
		Items: []models.OrderItem{
			{SellerID: "seller-1", ListingVariantID: "v1", Quantity: 2, UnitPrice: 25, Subtotal: 50},
		},
	}
	assert.NoError(t, repo.CreateOrder(order))
	assert.NotEmpty(t, order.ID)
	assert.NotEmpty(t, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.Equal(t, models.StatusPending, order.Items[0].Status)

	itemID := order.Items[0].ID
	item, err := repo.GetByID(itemID)
	assert.NoError(t, err)
	assert.Equal(t, "seller-1", item.SellerID)

	assert.NoError(t, repo.UpdateStatus(itemID, models.StatusPacked))
	item, err = repo.GetByID(itemID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPacked, item.Status)

	assert.NoError(t, repo.AppendHistory(&models.OrderStatusHistory{
		OrderItemID: itemID, OldStatus: models.StatusPending, NewStatus: models.StatusPacked, ChangedBy: "seller-1",
	}))
	history, err := repo.HistoryForItem(itemID)
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	assert.NoError(t, repo.AppendTracking(&models.OrderTracking{
		OrderItemID: itemID, CourierPartner: "BlueDart", ConsignmentNumber: "BD-1",
	}))
	tracking, err := repo.TrackingForItem(itemID)
	assert.NoError(t, err)
	assert.Len(t, tracking, 1)

	fetched, err := repo.GetOrder(order.ID)
	assert.NoError(t, err)
	assert.Len(t, fetched.Items, 1)
	assert.Equal(t, "pi_1", fetched.PaymentIntentID)

	// Status filter on the seller listing
	packed, err := repo.ListBySeller("seller-1", models.StatusPacked)
	assert.NoError(t, err)
	assert.Len(t, packed, 1)
	shipped, err := repo.ListBySeller("seller-1", models.StatusShipped)
	assert.NoError(t, err)
	assert.Empty(t, shipped)

	_, err = repo.GetByID("ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockReturnRepository(t *testing.T) {
	repo := repositories.NewMockReturnRepository()

	ret := &models.OrderReturn{
		OrderItemID: "item-1",
		SellerID:    "seller-1",
		Reason:      "damaged",
		ReturnType:  "return",
	}
	assert.NoError(t, repo.Create(ret))
	assert.NotEmpty(t, ret.ID)
	assert.Equal(t, models.ReturnInitiated, ret.Status)

	assert.NoError(t, repo.UpdateStatus(ret.ID, models.ReturnApproved))
	fetched, err := repo.GetByID(ret.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ReturnApproved, fetched.Status)

	refund := &models.OrderRefund{ReturnID: ret.ID, OrderItemID: "item-1", Amount: 50, Status: "initiated"}
	assert.NoError(t, repo.CreateRefund(refund))
	assert.NoError(t, repo.UpdateRefund(refund.ID, "completed", "re_1"))

	stored, err := repo.RefundForReturn(ret.ID)
	assert.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
	assert.Equal(t, "re_1", stored.ProviderRefund)

	_, err = repo.RefundForReturn("ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockStockRepositories(t *testing.T) {
	variants := repositories.NewMockVariantRepository()

	v := &models.ListingVariant{SellerID: "seller-1", SKU: "A", Name: "Variant A", Price: 10, StockQuantity: 5, IsAvailable: true}
	assert.NoError(t, variants.Create(v))
	assert.NoError(t, variants.UpdateStockQuantity(v.ID, 8))
	assert.NoError(t, variants.SetAvailability(v.ID, false))

	fetched, err := variants.GetByID(v.ID)
	assert.NoError(t, err)
	assert.Equal(t, 8, fetched.StockQuantity)
	assert.False(t, fetched.IsAvailable)

	// Missing IDs are skipped, not errors
	batch, err := variants.GetByIDs([]string{v.ID, "ghost"})
	assert.NoError(t, err)
	assert.Len(t, batch, 1)

	bundles := repositories.NewMockBundleRepository()
	b := &models.Bundle{
		SellerID: "seller-1",
		Name:     "Kit",
		Price:    25,
		Items:    []models.BundleItem{{ListingVariantID: v.ID, Quantity: 2}},
	}
	assert.NoError(t, bundles.Create(b))
	stored, err := bundles.GetByID(b.ID)
	assert.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, b.ID, stored.Items[0].BundleID)

	notifications := repositories.NewMockNotificationRepository()
	n := &models.LowStockNotification{
		SellerID: "seller-1", TargetType: models.TargetVariant, TargetID: v.ID,
		TargetName: v.Name, Quantity: 8, Threshold: 10, Level: "low",
	}
	assert.NoError(t, notifications.Create(n))

	open, err := notifications.LatestUnseenForTarget(models.TargetVariant, v.ID)
	assert.NoError(t, err)
	assert.Equal(t, n.ID, open.ID)

	assert.NoError(t, notifications.MarkSeen(n.ID))
	_, err = notifications.LatestUnseenForTarget(models.TargetVariant, v.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	unseen, err := notifications.ListBySeller("seller-1", true)
	assert.NoError(t, err)
	assert.Empty(t, unseen)
	all, err := notifications.ListBySeller("seller-1", false)
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}
