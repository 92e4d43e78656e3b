package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"nyamalink/internal/broker"
	"nyamalink/internal/models"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles the customer-to-butcher order lifecycle
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	inventory      *InventoryService
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher, inventory *InventoryService) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		inventory:      inventory,
		logger:         util.GetLogger(),
	}
}

// PlaceOrderRequest represents a customer order against public butcher stock
type PlaceOrderRequest struct {
	MeatID           int64           `json:"meat_id" binding:"required"`
	QuantityKg       float64         `json:"quantity_kg" binding:"required"`
	DeliveryLocation models.GeoPoint `json:"delivery_location"`
}

// StatusUpdateRequest carries a target status plus the details some targets
// require. Field presence is validated here, not trusted to the client.
type StatusUpdateRequest struct {
	Status               string                       `json:"status" binding:"required"`
	DispatchDetails      *models.DispatchDetails      `json:"dispatch_details,omitempty"`
	DeliveryConfirmation *models.DeliveryConfirmation `json:"delivery_confirmation,omitempty"`
}

// validateQuantity applies the shared placement quantity rules.
func validateQuantity(quantityKg float64) error {
	if math.IsNaN(quantityKg) || math.IsInf(quantityKg, 0) {
		return fmt.Errorf("%w: quantity_kg is not a number", ErrValidation)
	}
	if quantityKg <= 0 {
		return fmt.Errorf("%w: quantity_kg must be positive", ErrValidation)
	}
	if quantityKg < models.MinOrderQuantityKg {
		return fmt.Errorf("%w: quantity_kg must be at least %.1f", ErrValidation, models.MinOrderQuantityKg)
	}
	return nil
}

// snapshotTotal computes the immutable order total from the price at
// placement time, rounded to cents.
func snapshotTotal(pricePerKg, quantityKg float64) float64 {
	return math.Round(pricePerKg*quantityKg*100) / 100
}

// PlaceOrder creates an order against a butcher's public stock. Stock is
// consumed through a single conditional update before the record is written;
// a failed write returns the stock.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID int64, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := validateQuantity(req.QuantityKg); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, err
	}

	inv, err := s.inventory.ResolvePurchasable(ctx, req.MeatID, models.OwnerTypeButcher, customerID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("unavailable_item").Inc()
		return nil, err
	}

	butcher, err := s.store.GetUserByID(ctx, inv.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: butcher %d", ErrNotFound, inv.OwnerID)
	}

	if err := s.inventory.ConsumeStock(ctx, inv.ID, req.QuantityKg); err != nil {
		util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	order := &models.Order{
		CustomerID:        customerID,
		ButcherID:         butcher.ID,
		ButcheryName:      butcher.Name,
		MeatID:            inv.ID,
		MeatType:          inv.MeatType,
		PricePerKgAtOrder: inv.PricePerKg,
		QuantityKg:        req.QuantityKg,
		TotalPrice:        snapshotTotal(inv.PricePerKg, req.QuantityKg),
		Status:            models.StatusPending,
		DeliveryLongitude: req.DeliveryLocation.Longitude,
		DeliveryLatitude:  req.DeliveryLocation.Latitude,
		DeliveryLocation:  req.DeliveryLocation,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		if restoreErr := s.inventory.ReturnStock(ctx, inv.ID, req.QuantityKg); restoreErr != nil {
			s.logger.Error("Failed to return stock after order create failure",
				zap.Int64("inventory_id", inv.ID), zap.Error(restoreErr))
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", customerID),
		zap.Float64("total_price", order.TotalPrice))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ButcherID:  order.ButcherID,
		MeatType:   order.MeatType,
		QuantityKg: order.QuantityKg,
		TotalPrice: order.TotalPrice,
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves an order visible to the caller
func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.CustomerID != callerID && order.ButcherID != callerID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}
	return order, nil
}

// ListForCustomer retrieves the caller's own orders
func (s *OrderService) ListForCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	return s.store.ListOrdersByCustomer(ctx, customerID)
}

// ListForButcher retrieves incoming orders for the caller's butchery
func (s *OrderService) ListForButcher(ctx context.Context, butcherID int64) ([]models.Order, error) {
	return s.store.ListOrdersByButcher(ctx, butcherID)
}

// UpdateStatus advances an order along the transition graph. Only the owning
// butcher may call it. Cancelling before dispatch returns the stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, butcherID int64, req *StatusUpdateRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	target, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.ButcherID != butcherID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}

	updated, err := s.applyTransition(ctx, order, target, req.DispatchDetails, req.DeliveryConfirmation)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated, order.Status)
	return updated, nil
}

// ConfirmDelivery lets the customer close out an arrived order.
func (s *OrderService) ConfirmDelivery(ctx context.Context, orderID, customerID int64, receivedBy string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmDelivery")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}

	confirmation := &models.DeliveryConfirmation{ReceivedBy: receivedBy}
	updated, err := s.applyTransition(ctx, order, models.StatusCompleted, nil, confirmation)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated, order.Status)
	return updated, nil
}

// CancelOrder lets the customer back out while the order is still pending.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, customerID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled by the customer", ErrInvalidTransition)
	}

	updated, err := s.applyTransition(ctx, order, models.StatusCancelled, nil, nil)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, updated, order.Status)
	return updated, nil
}

// applyTransition enforces the graph, required sub-records and compensation,
// then persists and reloads the order.
func (s *OrderService) applyTransition(ctx context.Context, order *models.Order, target models.Status,
	dispatch *models.DispatchDetails, confirmation *models.DeliveryConfirmation) (*models.Order, error) {

	if !models.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}
	if err := validateTransitionDetails(target, dispatch, confirmation); err != nil {
		return nil, err
	}

	moved, err := s.store.UpdateOrderStatus(ctx, order.ID, order.Status, target, dispatch, confirmation)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: order %d is no longer %s", ErrInvalidTransition, order.ID, order.Status)
	}

	if target == models.StatusCancelled {
		if err := s.inventory.ReturnStock(ctx, order.MeatID, order.QuantityKg); err != nil {
			s.logger.Error("Failed to return stock for cancelled order",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
		util.OrdersCancelledTotal.Inc()
	}

	util.OrderStatusTransitionsTotal.WithLabelValues(string(target)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(target)))

	return s.store.GetOrderByID(ctx, order.ID)
}

func (s *OrderService) publishStatusChange(ctx context.Context, order *models.Order, from models.Status) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		ButcherID:  order.ButcherID,
		From:       from,
		To:         order.Status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}
