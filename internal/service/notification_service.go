package service

import (
	"context"
	"fmt"

	"nyamalink/internal/models"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"go.uber.org/zap"
)

// NotificationService persists per-user notifications. Rows are written by
// the notifier worker from domain events; delivery to devices is a separate
// concern handled downstream.
type NotificationService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(store *store.Store) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Notify writes one notification row for a user
func (ns *NotificationService) Notify(ctx context.Context, userID int64, title, message, notifType string) error {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if err := ns.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	util.NotificationsCreatedTotal.Inc()
	return nil
}

// ListForUser retrieves the caller's notifications
func (ns *NotificationService) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	return ns.store.ListNotificationsByUser(ctx, userID)
}

// MarkRead flags one of the caller's notifications as read
func (ns *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	if err := ns.store.MarkNotificationRead(ctx, id, userID); err != nil {
		return fmt.Errorf("%w: notification %d", ErrNotFound, id)
	}
	return nil
}

// HandleOrderPlaced notifies the butcher of a new incoming order
func (ns *NotificationService) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	msg := fmt.Sprintf("New order: %.1f kg %s for KES %.2f", event.QuantityKg, event.MeatType, event.TotalPrice)
	return ns.Notify(ctx, event.ButcherID, "New order received", msg, "order")
}

// HandleOrderStatusChanged notifies the customer of lifecycle progress
func (ns *NotificationService) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	msg := fmt.Sprintf("Order #%d is now %s", event.OrderID, event.To)
	return ns.Notify(ctx, event.CustomerID, "Order update", msg, "order")
}

// HandlePurchasePlaced notifies the selling agent of a new wholesale purchase
func (ns *NotificationService) HandlePurchasePlaced(ctx context.Context, event *models.PurchasePlacedEvent) error {
	msg := fmt.Sprintf("New purchase: %.1f kg %s for KES %.2f", event.QuantityKg, event.MeatType, event.TotalPrice)
	return ns.Notify(ctx, event.AgentID, "New purchase received", msg, "purchase")
}

// HandlePurchaseStatusChanged notifies the buyer of lifecycle progress
func (ns *NotificationService) HandlePurchaseStatusChanged(ctx context.Context, event *models.PurchaseStatusChangedEvent) error {
	msg := fmt.Sprintf("Purchase #%d is now %s", event.PurchaseID, event.To)
	return ns.Notify(ctx, event.BuyerID, "Purchase update", msg, "purchase")
}

// HandlePaymentReconciled notifies both sides that payment cleared
func (ns *NotificationService) HandlePaymentReconciled(ctx context.Context, event *models.PaymentReconciledEvent) error {
	msg := fmt.Sprintf("Payment of KES %.2f confirmed for %s #%d", event.AmountPaid, event.RecordKind, event.RecordID)
	if err := ns.Notify(ctx, event.PayerID, "Payment confirmed", msg, "payment"); err != nil {
		return err
	}
	return ns.Notify(ctx, event.SellerID, "Payment received", msg, "payment")
}
