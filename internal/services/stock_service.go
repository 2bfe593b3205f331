package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
)

// StockLevel is the three-way classification of a sellable quantity.
type StockLevel string

const (
	StockOK  StockLevel = "ok"
	StockLow StockLevel = "low"
	StockOut StockLevel = "out"
)

// DefaultLowStockThreshold is the boundary used when a seller has not
// configured one. The boundary is inclusive: quantity == threshold is low.
const DefaultLowStockThreshold = 10

// bundleStockTTL bounds how stale a cached bundle quantity can get. The
// cache is never invalidated on writes; the projection is recomputed once
// the entry expires.
const bundleStockTTL = 30 * time.Second

// LowStockStatus classifies a quantity against a threshold. It is pure and
// total: out at zero (or below), low up to and including the threshold,
// ok above it.
func LowStockStatus(quantity, threshold int) StockLevel {
	if quantity <= 0 {
		return StockOut
	}
	if quantity <= threshold {
		return StockLow
	}
	return StockOK
}

// BundleEffectiveStock computes how many complete bundles can be assembled
// from live variant stock: the minimum over items of
// floor(variant stock / required quantity). Any missing, unavailable or
// zero-stock constituent makes the whole bundle unavailable. This is a
// derived projection and is never persisted.
func BundleEffectiveStock(bundle *models.Bundle, variants map[string]models.ListingVariant) int {
	if len(bundle.Items) == 0 {
		return 0
	}
	effective := -1
	for _, item := range bundle.Items {
		variant, ok := variants[item.ListingVariantID]
		if !ok || !variant.IsAvailable || variant.StockQuantity <= 0 || item.Quantity <= 0 {
			return 0
		}
		assemblable := variant.StockQuantity / item.Quantity
		if effective == -1 || assemblable < effective {
			effective = assemblable
		}
	}
	if effective < 0 {
		return 0
	}
	return effective
}

// StockService owns variant stock mutation and the derived bundle stock
// projection. Stock writes are read-modify-write with no concurrency
// token, matching the store's last-write-wins behavior.
type StockService struct {
	variantRepo      repositories.VariantRepository
	bundleRepo       repositories.BundleRepository
	notificationRepo repositories.NotificationRepository
	publisher        rabbitmq.Publisher
	redisClient      *redis.Client
	threshold        int
}

// NewStockService creates a new StockService with the default low-stock
// threshold. publisher may be nil.
func NewStockService(variantRepo repositories.VariantRepository, bundleRepo repositories.BundleRepository, notificationRepo repositories.NotificationRepository, publisher rabbitmq.Publisher) *StockService {
	return &StockService{
		variantRepo:      variantRepo,
		bundleRepo:       bundleRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		threshold:        DefaultLowStockThreshold,
	}
}

// SetRedisClient enables the bundle stock cache. The service works without
// one; every read then recomputes from live variant rows.
func (s *StockService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// Restock adds a positive delta to a variant's stock and persists the new
// quantity. The read-current, compute-new, write-new sequence can lose an
// update when two restocks race; see DESIGN.md before "fixing" this.
func (s *StockService) Restock(sellerID, variantID string, delta int) (*models.ListingVariant, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	if delta <= 0 {
		return nil, &InvalidQuantityError{Delta: delta}
	}

	variant, err := s.loadOwnedVariant(sellerID, variantID)
	if err != nil {
		return nil, err
	}

	newQuantity := variant.StockQuantity + delta
	if err := s.variantRepo.UpdateStockQuantity(variant.ID, newQuantity); err != nil {
		return nil, &UpstreamError{Step: "stock update", Err: err}
	}
	variant.StockQuantity = newQuantity

	s.recordStockLevel(sellerID, models.TargetVariant, variant.ID, variant.Name, newQuantity)
	return variant, nil
}

// VariantStockLevel classifies one variant's current quantity.
func (s *StockService) VariantStockLevel(sellerID, variantID string) (StockLevel, int, error) {
	variant, err := s.loadOwnedVariant(sellerID, variantID)
	if err != nil {
		return "", 0, err
	}
	return LowStockStatus(variant.StockQuantity, s.threshold), variant.StockQuantity, nil
}

// EffectiveBundleStock returns the derived sellable quantity of a bundle,
// read through the Redis cache when one is configured.
func (s *StockService) EffectiveBundleStock(sellerID, bundleID string) (int, error) {
	bundle, err := s.loadOwnedBundle(sellerID, bundleID)
	if err != nil {
		return 0, err
	}

	cacheKey := "bundle_stock:" + bundle.ID
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(context.Background(), cacheKey).Result()
		if err == nil {
			if quantity, convErr := strconv.Atoi(cached); convErr == nil {
				return quantity, nil
			}
		}
	}

	quantity, err := s.computeBundleStock(bundle)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		s.redisClient.Set(context.Background(), cacheKey, strconv.Itoa(quantity), bundleStockTTL)
	}

	s.recordStockLevel(sellerID, models.TargetBundle, bundle.ID, bundle.Name, quantity)
	return quantity, nil
}

// BundleWithStock pairs a bundle with its derived quantity for list views.
type BundleWithStock struct {
	models.Bundle
	EffectiveStock int `json:"effective_stock"`
}

// ListBundles returns the seller's bundles with fresh effective stock.
func (s *StockService) ListBundles(sellerID string) ([]BundleWithStock, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	bundles, err := s.bundleRepo.ListBySeller(sellerID)
	if err != nil {
		return nil, err
	}

	result := make([]BundleWithStock, 0, len(bundles))
	for i := range bundles {
		quantity, err := s.computeBundleStock(&bundles[i])
		if err != nil {
			return nil, err
		}
		result = append(result, BundleWithStock{Bundle: bundles[i], EffectiveStock: quantity})
	}
	return result, nil
}

// ListVariants returns the seller's variants.
func (s *StockService) ListVariants(sellerID string) ([]models.ListingVariant, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	return s.variantRepo.ListBySeller(sellerID)
}

// GetVariant returns one of the seller's variants.
func (s *StockService) GetVariant(sellerID, variantID string) (*models.ListingVariant, error) {
	return s.loadOwnedVariant(sellerID, variantID)
}

// SetVariantAvailability flips a variant's availability. Bundle stock is
// derived, so hiding a constituent immediately zeroes its bundles.
func (s *StockService) SetVariantAvailability(sellerID, variantID string, available bool) (*models.ListingVariant, error) {
	variant, err := s.loadOwnedVariant(sellerID, variantID)
	if err != nil {
		return nil, err
	}
	if err := s.variantRepo.SetAvailability(variant.ID, available); err != nil {
		return nil, &UpstreamError{Step: "availability update", Err: err}
	}
	variant.IsAvailable = available
	return variant, nil
}

// ListNotifications returns the seller's low-stock notifications.
func (s *StockService) ListNotifications(sellerID string, unseenOnly bool) ([]models.LowStockNotification, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	return s.notificationRepo.ListBySeller(sellerID, unseenOnly)
}

// MarkNotificationSeen acknowledges one notification.
func (s *StockService) MarkNotificationSeen(sellerID, notificationID string) error {
	if sellerID == "" {
		return ErrNotAuthorized
	}
	return s.notificationRepo.MarkSeen(notificationID)
}

// computeBundleStock loads the live constituent variants and derives the
// bundle quantity.
func (s *StockService) computeBundleStock(bundle *models.Bundle) (int, error) {
	ids := make([]string, 0, len(bundle.Items))
	for _, item := range bundle.Items {
		ids = append(ids, item.ListingVariantID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	variants, err := s.variantRepo.GetByIDs(ids)
	if err != nil {
		return 0, &UpstreamError{Step: "variant load", Err: err}
	}
	byID := make(map[string]models.ListingVariant, len(variants))
	for _, variant := range variants {
		byID[variant.ID] = variant
	}
	return BundleEffectiveStock(bundle, byID), nil
}

// recordStockLevel classifies a quantity and, when it is low or out,
// creates a notification row unless an unseen one is already open, then
// publishes a stock.low event. Creation is opportunistic: two concurrent
// checks may both insert, which downstream consumers tolerate.
func (s *StockService) recordStockLevel(sellerID, targetType, targetID, targetName string, quantity int) {
	level := LowStockStatus(quantity, s.threshold)
	if level == StockOK {
		return
	}

	if _, err := s.notificationRepo.LatestUnseenForTarget(targetType, targetID); err == nil {
		return // an open alert already exists
	}

	notification := &models.LowStockNotification{
		SellerID:   sellerID,
		TargetType: targetType,
		TargetID:   targetID,
		TargetName: targetName,
		Quantity:   quantity,
		Threshold:  s.threshold,
		Level:      string(level),
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		log.Printf("Failed to create low-stock notification for %s %s: %v", targetType, targetID, err)
		return
	}

	s.publishStockLow(notification)
}

// publishStockLow emits a stock.low event, best effort.
func (s *StockService) publishStockLow(notification *models.LowStockNotification) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"type":        "stock.low",
		"seller_id":   notification.SellerID,
		"target_type": notification.TargetType,
		"target_id":   notification.TargetID,
		"quantity":    notification.Quantity,
		"threshold":   notification.Threshold,
		"level":       notification.Level,
	})
	if err != nil {
		log.Printf("Failed to marshal stock event for %s: %v", notification.TargetID, err)
		return
	}
	if err := s.publisher.Publish("", rabbitmq.EventQueue, body); err != nil {
		log.Printf("Warning: Failed to publish stock event for %s: %v", notification.TargetID, err)
	}
}

// loadOwnedVariant fetches a variant and checks the caller owns it.
func (s *StockService) loadOwnedVariant(sellerID, variantID string) (*models.ListingVariant, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, &UpstreamError{Step: "variant load", Err: err}
	}
	if variant.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	return variant, nil
}

// loadOwnedBundle fetches a bundle and checks the caller owns it.
func (s *StockService) loadOwnedBundle(sellerID, bundleID string) (*models.Bundle, error) {
	if sellerID == "" {
		return nil, ErrNotAuthorized
	}
	bundle, err := s.bundleRepo.GetByID(bundleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, &UpstreamError{Step: "bundle load", Err: err}
	}
	if bundle.SellerID != sellerID {
		return nil, ErrNotAuthorized
	}
	return bundle, nil
}

// SetLowStockThreshold overrides the default threshold, used by sellers
// with custom alert boundaries.
func (s *StockService) SetLowStockThreshold(threshold int) error {
	if threshold <= 0 {
		return fmt.Errorf("low-stock threshold must be positive, got %d", threshold)
	}
	s.threshold = threshold
	return nil
}
