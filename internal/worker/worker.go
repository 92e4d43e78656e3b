package worker

import (
	"context"
	"log"

	"nyamalink/internal/broker"
	"nyamalink/internal/models"
	"nyamalink/internal/service"
	"nyamalink/internal/store"
)

// NotifierWorker consumes domain events and fans them out into durable
// per-user notifications. Event IDs are deduped through the processed-events
// table so a redelivered message never produces a second notification.
type NotifierWorker struct {
	consumer      *broker.Consumer
	eventHandler  *broker.EventHandler
	store         *store.Store
	notifications *service.NotificationService
}

// NewNotifierWorker creates a new notifier worker
func NewNotifierWorker(
	consumer *broker.Consumer,
	store *store.Store,
	notifications *service.NotificationService,
) *NotifierWorker {
	w := &NotifierWorker{
		consumer:      consumer,
		store:         store,
		notifications: notifications,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		return w.once(ctx, e.BaseEvent, func(ctx context.Context) error {
			return notifications.HandleOrderPlaced(ctx, e)
		})
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		return w.once(ctx, e.BaseEvent, func(ctx context.Context) error {
			return notifications.HandleOrderStatusChanged(ctx, e)
		})
	})
	eventHandler.OnPurchasePlaced(func(ctx context.Context, e *models.PurchasePlacedEvent) error {
		return w.once(ctx, e.BaseEvent, func(ctx context.Context) error {
			return notifications.HandlePurchasePlaced(ctx, e)
		})
	})
	eventHandler.OnPurchaseStatusChanged(func(ctx context.Context, e *models.PurchaseStatusChangedEvent) error {
		return w.once(ctx, e.BaseEvent, func(ctx context.Context) error {
			return notifications.HandlePurchaseStatusChanged(ctx, e)
		})
	})
	eventHandler.OnPaymentReconciled(func(ctx context.Context, e *models.PaymentReconciledEvent) error {
		return w.once(ctx, e.BaseEvent, func(ctx context.Context) error {
			return notifications.HandlePaymentReconciled(ctx, e)
		})
	})

	w.eventHandler = eventHandler
	return w
}

// once runs fn only if the event has not been handled before
func (w *NotifierWorker) once(ctx context.Context, base models.BaseEvent, fn func(context.Context) error) error {
	processed, err := w.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return err
	}
	if processed {
		log.Printf("Event already processed: %s", base.EventID)
		return nil
	}

	if err := fn(ctx); err != nil {
		return err
	}

	return w.store.MarkEventProcessed(ctx, base.EventID, base.EventType)
}

// Start starts the worker
func (w *NotifierWorker) Start(ctx context.Context) error {
	log.Println("Starting notifier worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotifierWorker) Stop() error {
	log.Println("Stopping notifier worker...")
	return w.consumer.Close()
}
