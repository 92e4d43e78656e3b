package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nyamalink/internal/models"
	"nyamalink/internal/redisclient"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"go.uber.org/zap"
)

// InventoryService handles stock records and the check-and-decrement path
// shared by order and purchase placement.
type InventoryService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *store.Store, redis *redisclient.Client) *InventoryService {
	return &InventoryService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// AddStockRequest represents a request to create a stock record
type AddStockRequest struct {
	MeatType           string  `json:"meat_type" binding:"required"`
	QuantityKg         float64 `json:"quantity_kg" binding:"required"`
	PricePerKg         float64 `json:"price_per_kg" binding:"required"`
	SlaughterhouseName string  `json:"slaughterhouse_name"`
	IsPublic           bool    `json:"is_public"`
}

// AddStock creates a stock record for the calling owner
func (is *InventoryService) AddStock(ctx context.Context, ownerType string, ownerID int64, req *AddStockRequest) (*models.Inventory, error) {
	if strings.TrimSpace(req.MeatType) == "" {
		return nil, fmt.Errorf("%w: meat_type is required", ErrValidation)
	}
	if req.QuantityKg < 0 {
		return nil, fmt.Errorf("%w: quantity_kg must not be negative", ErrValidation)
	}
	if req.PricePerKg <= 0 {
		return nil, fmt.Errorf("%w: price_per_kg must be positive", ErrValidation)
	}

	inv := &models.Inventory{
		MeatType:           strings.TrimSpace(req.MeatType),
		QuantityKg:         req.QuantityKg,
		PricePerKg:         req.PricePerKg,
		SlaughterhouseName: req.SlaughterhouseName,
		IsPublic:           req.IsPublic,
		OwnerType:          ownerType,
		OwnerID:            ownerID,
	}

	if err := is.store.CreateInventory(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	if err := is.redis.SetStock(ctx, inv.ID, inv.QuantityKg); err != nil {
		is.logger.Warn("Failed to cache stock", zap.Int64("inventory_id", inv.ID), zap.Error(err))
	}

	util.InventoryItemsCreatedTotal.Inc()
	is.logger.Info("Stock added",
		zap.Int64("inventory_id", inv.ID),
		zap.String("meat_type", inv.MeatType),
		zap.Float64("quantity_kg", inv.QuantityKg))
	return inv, nil
}

// OwnStock lists the caller's stock records
func (is *InventoryService) OwnStock(ctx context.Context, ownerType string, ownerID int64) ([]models.Inventory, error) {
	return is.store.ListInventoryByOwner(ctx, ownerType, ownerID)
}

// Market lists public stock of the given owner type, hiding the viewer's own
func (is *InventoryService) Market(ctx context.Context, ownerType string, viewerID int64) ([]models.Inventory, error) {
	return is.store.ListPublicInventory(ctx, ownerType, viewerID)
}

// UpdateStockRequest represents edits to an owned stock record
type UpdateStockRequest struct {
	MeatType           string   `json:"meat_type"`
	QuantityKg         *float64 `json:"quantity_kg"`
	PricePerKg         *float64 `json:"price_per_kg"`
	SlaughterhouseName *string  `json:"slaughterhouse_name"`
	IsPublic           *bool    `json:"is_public"`
}

// UpdateStock edits an owned record and refreshes the cache
func (is *InventoryService) UpdateStock(ctx context.Context, id int64, ownerType string, ownerID int64, req *UpdateStockRequest) (*models.Inventory, error) {
	inv, err := is.store.GetInventoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: inventory %d", ErrNotFound, id)
	}
	if inv.OwnerType != ownerType || inv.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: inventory %d", ErrForbidden, id)
	}

	if strings.TrimSpace(req.MeatType) != "" {
		inv.MeatType = strings.TrimSpace(req.MeatType)
	}
	if req.QuantityKg != nil {
		if *req.QuantityKg < 0 {
			return nil, fmt.Errorf("%w: quantity_kg must not be negative", ErrValidation)
		}
		inv.QuantityKg = *req.QuantityKg
	}
	if req.PricePerKg != nil {
		if *req.PricePerKg <= 0 {
			return nil, fmt.Errorf("%w: price_per_kg must be positive", ErrValidation)
		}
		inv.PricePerKg = *req.PricePerKg
	}
	if req.SlaughterhouseName != nil {
		inv.SlaughterhouseName = *req.SlaughterhouseName
	}
	if req.IsPublic != nil {
		inv.IsPublic = *req.IsPublic
	}

	if err := is.store.UpdateInventory(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	if err := is.redis.SetStock(ctx, inv.ID, inv.QuantityKg); err != nil {
		is.logger.Warn("Failed to refresh stock cache", zap.Int64("inventory_id", inv.ID), zap.Error(err))
	}

	return inv, nil
}

// DeleteStock removes an owned record and its cache entry
func (is *InventoryService) DeleteStock(ctx context.Context, id int64, ownerType string, ownerID int64) error {
	if err := is.store.DeleteInventory(ctx, id, ownerType, ownerID); err != nil {
		return fmt.Errorf("%w: inventory %d", ErrNotFound, id)
	}
	if err := is.redis.DropStock(ctx, id); err != nil {
		is.logger.Warn("Failed to drop stock cache", zap.Int64("inventory_id", id), zap.Error(err))
	}
	return nil
}

// ResolvePurchasable fetches an item and applies the placement visibility
// rules: it must exist, be public, and belong to someone other than the buyer.
// Private and self-owned items are reported as not found.
func (is *InventoryService) ResolvePurchasable(ctx context.Context, meatID int64, ownerType string, buyerID int64) (*models.Inventory, error) {
	inv, err := is.store.GetInventoryByID(ctx, meatID)
	if err != nil {
		return nil, fmt.Errorf("%w: inventory %d", ErrNotFound, meatID)
	}
	if !inv.IsPublic || inv.OwnerType != ownerType || inv.OwnerID == buyerID {
		return nil, fmt.Errorf("%w: inventory %d", ErrNotFound, meatID)
	}
	return inv, nil
}

// ConsumeStock takes quantityKg off an item. The Redis gate rejects obvious
// oversells cheaply; the conditional database update is the authority, so a
// cold or lying cache can never drive the stored quantity negative.
func (is *InventoryService) ConsumeStock(ctx context.Context, inventoryID int64, quantityKg float64) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.ConsumeStock")
	defer span.End()

	start := time.Now()
	defer func() {
		util.StockDecrementLatency.Observe(time.Since(start).Seconds())
	}()

	gated := false
	outcome, err := is.redis.DecrementStock(ctx, inventoryID, quantityKg)
	switch {
	case err != nil:
		is.logger.Warn("Redis stock gate failed, relying on database",
			zap.Int64("inventory_id", inventoryID), zap.Error(err))
	case outcome == redisclient.StockInsufficient:
		util.StockDecrementsFailed.WithLabelValues("insufficient_cached").Inc()
		return ErrInsufficientStock
	case outcome == redisclient.StockDecremented:
		gated = true
	}

	ok, err := is.store.DecrementStock(ctx, inventoryID, quantityKg)
	if err != nil {
		if gated {
			is.restoreCache(inventoryID, quantityKg)
		}
		util.StockDecrementsFailed.WithLabelValues("db_error").Inc()
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if !ok {
		if gated {
			is.restoreCache(inventoryID, quantityKg)
		}
		util.StockDecrementsFailed.WithLabelValues("insufficient").Inc()
		return ErrInsufficientStock
	}

	if !gated {
		// cache was cold or unavailable; reseed from the authoritative value
		if inv, err := is.store.GetInventoryByID(ctx, inventoryID); err == nil {
			if err := is.redis.SetStock(ctx, inventoryID, inv.QuantityKg); err != nil {
				is.logger.Warn("Failed to reseed stock cache",
					zap.Int64("inventory_id", inventoryID), zap.Error(err))
			}
		}
	}

	return nil
}

// ReturnStock gives quantityKg back to an item (compensation and
// cancellation path).
func (is *InventoryService) ReturnStock(ctx context.Context, inventoryID int64, quantityKg float64) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.ReturnStock")
	defer span.End()

	is.restoreCache(inventoryID, quantityKg)
	return is.store.RestoreStock(ctx, inventoryID, quantityKg)
}

func (is *InventoryService) restoreCache(inventoryID int64, quantityKg float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := is.redis.RestoreStock(ctx, inventoryID, quantityKg); err != nil {
		is.logger.Error("Failed to restore stock cache",
			zap.Int64("inventory_id", inventoryID), zap.Error(err))
	}
}

// SyncStockToRedis seeds the cache from the database at startup
func (is *InventoryService) SyncStockToRedis(ctx context.Context) error {
	is.logger.Info("Starting stock sync to Redis")

	items, err := is.store.ListAllInventory(ctx)
	if err != nil {
		return fmt.Errorf("failed to list inventory: %w", err)
	}

	for _, item := range items {
		if err := is.redis.SetStock(ctx, item.ID, item.QuantityKg); err != nil {
			is.logger.Error("Failed to seed stock cache",
				zap.Int64("inventory_id", item.ID), zap.Error(err))
		}
	}

	is.logger.Info("Stock sync completed", zap.Int("count", len(items)))
	return nil
}
