package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"nyamalink/internal/broker"
	"nyamalink/internal/models"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService reconciles gateway webhooks onto order and purchase
// payment sub-records.
type PaymentService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	secret         string
}

// NewPaymentService creates a new payment service
func NewPaymentService(store *store.Store, eventPublisher *broker.EventPublisher, paystackSecret string) *PaymentService {
	return &PaymentService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		secret:         paystackSecret,
	}
}

// PaystackEvent is the subset of the gateway payload we act on.
type PaystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"` // minor units (kobo/cents)
		PaidAt    string `json:"paid_at"`
		Metadata  struct {
			OrderID    string `json:"orderId"`
			RecordKind string `json:"recordKind"`
		} `json:"metadata"`
	} `json:"data"`
}

// VerifySignature checks the HMAC-SHA512 hex signature Paystack sends in
// x-paystack-signature over the raw request body.
func (ps *PaymentService) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(ps.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleWebhook verifies and applies one gateway event. charge.success marks
// the referenced order or purchase paid; every other event type is ignored.
// Replays of the same reference are dropped via the processed-events table.
func (ps *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleWebhook")
	defer span.End()

	if !ps.VerifySignature(body, signature) {
		util.WebhooksReceivedTotal.WithLabelValues("bad_signature").Inc()
		return ErrBadSignature
	}

	var event PaystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("bad_payload").Inc()
		return fmt.Errorf("%w: malformed webhook payload", ErrValidation)
	}

	if event.Event != "charge.success" {
		util.WebhooksReceivedTotal.WithLabelValues("ignored").Inc()
		ps.logger.Info("Ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	dedupeKey := "paystack:" + event.Data.Reference
	processed, err := ps.store.IsEventProcessed(ctx, dedupeKey)
	if err != nil {
		return fmt.Errorf("failed to check webhook dedupe: %w", err)
	}
	if processed {
		util.WebhooksReceivedTotal.WithLabelValues("duplicate").Inc()
		ps.logger.Info("Duplicate webhook dropped", zap.String("reference", event.Data.Reference))
		return nil
	}

	recordID, err := strconv.ParseInt(event.Data.Metadata.OrderID, 10, 64)
	if err != nil {
		util.WebhooksReceivedTotal.WithLabelValues("bad_payload").Inc()
		return fmt.Errorf("%w: metadata.orderId is not a record id", ErrValidation)
	}

	now := time.Now()
	payment := models.PaymentStatus{
		Status:         models.PaymentPaid,
		TransactionID:  event.Data.Reference,
		PaymentGateway: "Paystack",
		PaymentDate:    &now,
		AmountPaid:     float64(event.Data.Amount) / 100,
	}

	kind, payerID, sellerID, err := ps.reconcile(ctx, event.Data.Metadata.RecordKind, recordID, payment)
	if err != nil {
		return err
	}

	if err := ps.store.MarkEventProcessed(ctx, dedupeKey, models.EventTypePaymentReconciled); err != nil {
		ps.logger.Error("Failed to mark webhook processed", zap.Error(err))
	}

	util.WebhooksReceivedTotal.WithLabelValues("reconciled").Inc()
	util.PaymentsReconciledTotal.Inc()
	ps.logger.Info("Payment reconciled",
		zap.String("record_kind", kind),
		zap.Int64("record_id", recordID),
		zap.String("reference", event.Data.Reference),
		zap.Float64("amount_paid", payment.AmountPaid))

	reconciledEvent := &models.PaymentReconciledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentReconciled,
			Timestamp: now,
		},
		RecordKind:    kind,
		RecordID:      recordID,
		PayerID:       payerID,
		SellerID:      sellerID,
		TransactionID: event.Data.Reference,
		AmountPaid:    payment.AmountPaid,
	}
	if err := ps.eventPublisher.PublishPaymentReconciled(ctx, reconciledEvent); err != nil {
		ps.logger.Error("Failed to publish PaymentReconciled event", zap.Error(err))
	}

	return nil
}

// recordLookups returns the record kinds to try, in order, for the
// metadata's recordKind hint. A known hint pins the lookup so an order and
// a purchase sharing an id can never shadow each other; legacy payloads
// without one fall back to order-then-purchase, matching how references
// were issued at checkout.
func recordLookups(kind string) []string {
	switch kind {
	case "order":
		return []string{"order"}
	case "purchase":
		return []string{"purchase"}
	default:
		return []string{"order", "purchase"}
	}
}

// reconcile applies the payment to the record named by the webhook metadata.
func (ps *PaymentService) reconcile(ctx context.Context, recordKind string, recordID int64, payment models.PaymentStatus) (kind string, payerID, sellerID int64, err error) {
	for _, k := range recordLookups(recordKind) {
		switch k {
		case "order":
			if order, orderErr := ps.store.GetOrderByID(ctx, recordID); orderErr == nil {
				if err := ps.store.SetOrderPaymentStatus(ctx, order.ID, payment); err != nil {
					return "", 0, 0, fmt.Errorf("failed to set order payment status: %w", err)
				}
				return "order", order.CustomerID, order.ButcherID, nil
			}
		case "purchase":
			if purchase, purchaseErr := ps.store.GetPurchaseByID(ctx, recordID); purchaseErr == nil {
				if err := ps.store.SetPurchasePaymentStatus(ctx, purchase.ID, payment); err != nil {
					return "", 0, 0, fmt.Errorf("failed to set purchase payment status: %w", err)
				}
				return "purchase", purchase.BuyerID, purchase.AgentID, nil
			}
		}
	}

	return "", 0, 0, fmt.Errorf("%w: no order or purchase with id %d", ErrNotFound, recordID)
}
