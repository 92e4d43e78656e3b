package service

import (
	"context"
	"fmt"
	"time"

	"nyamalink/internal/broker"
	"nyamalink/internal/models"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseService handles the wholesale butcher/agent-to-agent leg. The
// lifecycle mirrors orders: agent-owned public stock, snapshot pricing,
// the same transition graph.
type PurchaseService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	inventory      *InventoryService
	logger         *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(store *store.Store, eventPublisher *broker.EventPublisher, inventory *InventoryService) *PurchaseService {
	return &PurchaseService{
		store:          store,
		eventPublisher: eventPublisher,
		inventory:      inventory,
		logger:         util.GetLogger(),
	}
}

// PlacePurchaseRequest represents a wholesale buy against public agent stock
type PlacePurchaseRequest struct {
	MeatID     int64   `json:"meat_id" binding:"required"`
	QuantityKg float64 `json:"quantity_kg" binding:"required"`
}

// PurchaseStatusUpdateRequest carries a target status plus the details
// some targets require.
type PurchaseStatusUpdateRequest struct {
	Status                string                       `json:"status" binding:"required"`
	PickupDetails         *models.DispatchDetails      `json:"pickup_details,omitempty"`
	ReceptionConfirmation *models.DeliveryConfirmation `json:"reception_confirmation,omitempty"`
}

// PlacePurchase creates a wholesale purchase against an agent's public stock.
func (s *PurchaseService) PlacePurchase(ctx context.Context, buyerType string, buyerID int64, req *PlacePurchaseRequest) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.PlacePurchase")
	defer span.End()

	if buyerType != models.RoleButcher && buyerType != models.RoleAgent {
		return nil, fmt.Errorf("%w: buyer must be a butcher or agent", ErrValidation)
	}
	if err := validateQuantity(req.QuantityKg); err != nil {
		util.PurchasesFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, err
	}

	inv, err := s.inventory.ResolvePurchasable(ctx, req.MeatID, models.OwnerTypeAgent, buyerID)
	if err != nil {
		util.PurchasesFailedTotal.WithLabelValues("unavailable_item").Inc()
		return nil, err
	}

	if err := s.inventory.ConsumeStock(ctx, inv.ID, req.QuantityKg); err != nil {
		util.PurchasesFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	purchase := &models.Purchase{
		MeatID:             inv.ID,
		QuantityKg:         req.QuantityKg,
		BuyerType:          buyerType,
		BuyerID:            buyerID,
		AgentID:            inv.OwnerID,
		MeatType:           inv.MeatType,
		SlaughterhouseName: inv.SlaughterhouseName,
		PricePerKgAtOrder:  inv.PricePerKg,
		TotalPrice:         snapshotTotal(inv.PricePerKg, req.QuantityKg),
		Status:             models.StatusPending,
	}

	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		if restoreErr := s.inventory.ReturnStock(ctx, inv.ID, req.QuantityKg); restoreErr != nil {
			s.logger.Error("Failed to return stock after purchase create failure",
				zap.Int64("inventory_id", inv.ID), zap.Error(restoreErr))
		}
		util.PurchasesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	util.PurchasesPlacedTotal.Inc()
	s.logger.Info("Purchase placed",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("buyer_id", buyerID),
		zap.Float64("total_price", purchase.TotalPrice))

	event := &models.PurchasePlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePurchasePlaced,
			Timestamp: time.Now(),
		},
		PurchaseID: purchase.ID,
		BuyerID:    purchase.BuyerID,
		AgentID:    purchase.AgentID,
		MeatType:   purchase.MeatType,
		QuantityKg: purchase.QuantityKg,
		TotalPrice: purchase.TotalPrice,
	}
	if err := s.eventPublisher.PublishPurchasePlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchasePlaced event", zap.Error(err))
	}

	return purchase, nil
}

// GetPurchase retrieves a purchase visible to the caller
func (s *PurchaseService) GetPurchase(ctx context.Context, purchaseID, callerID int64) (*models.Purchase, error) {
	purchase, err := s.store.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", ErrNotFound, purchaseID)
	}
	if purchase.BuyerID != callerID && purchase.AgentID != callerID {
		return nil, fmt.Errorf("%w: purchase %d", ErrForbidden, purchaseID)
	}
	return purchase, nil
}

// ListForBuyer retrieves the caller's own purchases
func (s *PurchaseService) ListForBuyer(ctx context.Context, buyerID int64) ([]models.Purchase, error) {
	return s.store.ListPurchasesByBuyer(ctx, buyerID)
}

// ListForAgent retrieves incoming purchases for the selling agent
func (s *PurchaseService) ListForAgent(ctx context.Context, agentID int64) ([]models.Purchase, error) {
	return s.store.ListPurchasesByAgent(ctx, agentID)
}

// UpdateStatus advances a purchase along the transition graph. Only the
// selling agent may call it. Cancelling before dispatch returns the stock.
func (s *PurchaseService) UpdateStatus(ctx context.Context, purchaseID, agentID int64, req *PurchaseStatusUpdateRequest) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.UpdateStatus")
	defer span.End()

	target, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	purchase, err := s.store.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", ErrNotFound, purchaseID)
	}
	if purchase.AgentID != agentID {
		return nil, fmt.Errorf("%w: purchase %d", ErrForbidden, purchaseID)
	}

	updated, err := s.applyTransition(ctx, purchase, target, req.PickupDetails, req.ReceptionConfirmation)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated, purchase.Status)
	return updated, nil
}

// ConfirmReception lets the buyer close out an arrived purchase.
func (s *PurchaseService) ConfirmReception(ctx context.Context, purchaseID, buyerID int64, receivedBy string) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.ConfirmReception")
	defer span.End()

	purchase, err := s.store.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase %d", ErrNotFound, purchaseID)
	}
	if purchase.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: purchase %d", ErrForbidden, purchaseID)
	}

	confirmation := &models.DeliveryConfirmation{ReceivedBy: receivedBy}
	updated, err := s.applyTransition(ctx, purchase, models.StatusCompleted, nil, confirmation)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated, purchase.Status)
	return updated, nil
}

func (s *PurchaseService) applyTransition(ctx context.Context, purchase *models.Purchase, target models.Status,
	pickup *models.DispatchDetails, confirmation *models.DeliveryConfirmation) (*models.Purchase, error) {

	if !models.CanTransition(purchase.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, purchase.Status, target)
	}
	if err := validateTransitionDetails(target, pickup, confirmation); err != nil {
		return nil, err
	}

	moved, err := s.store.UpdatePurchaseStatus(ctx, purchase.ID, purchase.Status, target, pickup, confirmation)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase status: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: purchase %d is no longer %s", ErrInvalidTransition, purchase.ID, purchase.Status)
	}

	if target == models.StatusCancelled {
		if err := s.inventory.ReturnStock(ctx, purchase.MeatID, purchase.QuantityKg); err != nil {
			s.logger.Error("Failed to return stock for cancelled purchase",
				zap.Int64("purchase_id", purchase.ID), zap.Error(err))
		}
		util.PurchasesCancelledTotal.Inc()
	}

	util.PurchaseStatusTransitionsTotal.WithLabelValues(string(target)).Inc()
	s.logger.Info("Purchase status updated",
		zap.Int64("purchase_id", purchase.ID),
		zap.String("from", string(purchase.Status)),
		zap.String("to", string(target)))

	return s.store.GetPurchaseByID(ctx, purchase.ID)
}

func (s *PurchaseService) publishStatusChange(ctx context.Context, purchase *models.Purchase, from models.Status) {
	event := &models.PurchaseStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePurchaseStatusChanged,
			Timestamp: time.Now(),
		},
		PurchaseID: purchase.ID,
		BuyerID:    purchase.BuyerID,
		AgentID:    purchase.AgentID,
		From:       from,
		To:         purchase.Status,
	}
	if err := s.eventPublisher.PublishPurchaseStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish PurchaseStatusChanged event", zap.Error(err))
	}
}
