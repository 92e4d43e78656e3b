package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"nyamalink/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchasePlaced publishes PurchasePlaced event
func (ep *EventPublisher) PublishPurchasePlaced(ctx context.Context, event *models.PurchasePlacedEvent) error {
	key := fmt.Sprintf("purchase-%d", event.PurchaseID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchaseStatusChanged publishes PurchaseStatusChanged event
func (ep *EventPublisher) PublishPurchaseStatusChanged(ctx context.Context, event *models.PurchaseStatusChangedEvent) error {
	key := fmt.Sprintf("purchase-%d", event.PurchaseID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentReconciled publishes PaymentReconciled event
func (ep *EventPublisher) PublishPaymentReconciled(ctx context.Context, event *models.PaymentReconciledEvent) error {
	key := fmt.Sprintf("%s-%d", event.RecordKind, event.RecordID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrderPlaced           func(context.Context, *models.OrderPlacedEvent) error
	onOrderStatusChanged    func(context.Context, *models.OrderStatusChangedEvent) error
	onPurchasePlaced        func(context.Context, *models.PurchasePlacedEvent) error
	onPurchaseStatusChanged func(context.Context, *models.PurchaseStatusChangedEvent) error
	onPaymentReconciled     func(context.Context, *models.PaymentReconciledEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// OnPurchasePlaced registers a handler for PurchasePlaced events
func (eh *EventHandler) OnPurchasePlaced(handler func(context.Context, *models.PurchasePlacedEvent) error) {
	eh.onPurchasePlaced = handler
}

// OnPurchaseStatusChanged registers a handler for PurchaseStatusChanged events
func (eh *EventHandler) OnPurchaseStatusChanged(handler func(context.Context, *models.PurchaseStatusChangedEvent) error) {
	eh.onPurchaseStatusChanged = handler
}

// OnPaymentReconciled registers a handler for PaymentReconciled events
func (eh *EventHandler) OnPaymentReconciled(handler func(context.Context, *models.PaymentReconciledEvent) error) {
	eh.onPaymentReconciled = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	case models.EventTypePurchasePlaced:
		if eh.onPurchasePlaced != nil {
			var event models.PurchasePlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchasePlaced event: %w", err)
			}
			return eh.onPurchasePlaced(ctx, &event)
		}

	case models.EventTypePurchaseStatusChanged:
		if eh.onPurchaseStatusChanged != nil {
			var event models.PurchaseStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchaseStatusChanged event: %w", err)
			}
			return eh.onPurchaseStatusChanged(ctx, &event)
		}

	case models.EventTypePaymentReconciled:
		if eh.onPaymentReconciled != nil {
			var event models.PaymentReconciledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentReconciled event: %w", err)
			}
			return eh.onPaymentReconciled(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
