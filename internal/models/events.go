package models

import "time"

// Event types
const (
	EventTypeOrderPlaced           = "ORDER_PLACED"
	EventTypeOrderStatusChanged    = "ORDER_STATUS_CHANGED"
	EventTypePurchasePlaced        = "PURCHASE_PLACED"
	EventTypePurchaseStatusChanged = "PURCHASE_STATUS_CHANGED"
	EventTypePaymentReconciled     = "PAYMENT_RECONCILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a customer order is created
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    int64   `json:"order_id"`
	CustomerID int64   `json:"customer_id"`
	ButcherID  int64   `json:"butcher_id"`
	MeatType   string  `json:"meat_type"`
	QuantityKg float64 `json:"quantity_kg"`
	TotalPrice float64 `json:"total_price"`
}

// OrderStatusChangedEvent published on every accepted status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"customer_id"`
	ButcherID  int64  `json:"butcher_id"`
	From       Status `json:"from"`
	To         Status `json:"to"`
}

// PurchasePlacedEvent published when a wholesale purchase is created
type PurchasePlacedEvent struct {
	BaseEvent
	PurchaseID int64   `json:"purchase_id"`
	BuyerID    int64   `json:"buyer_id"`
	AgentID    int64   `json:"agent_id"`
	MeatType   string  `json:"meat_type"`
	QuantityKg float64 `json:"quantity_kg"`
	TotalPrice float64 `json:"total_price"`
}

// PurchaseStatusChangedEvent published on every accepted purchase transition
type PurchaseStatusChangedEvent struct {
	BaseEvent
	PurchaseID int64  `json:"purchase_id"`
	BuyerID    int64  `json:"buyer_id"`
	AgentID    int64  `json:"agent_id"`
	From       Status `json:"from"`
	To         Status `json:"to"`
}

// PaymentReconciledEvent published when a gateway webhook marks a record paid
type PaymentReconciledEvent struct {
	BaseEvent
	RecordKind    string  `json:"record_kind"` // order | purchase
	RecordID      int64   `json:"record_id"`
	PayerID       int64   `json:"payer_id"`
	SellerID      int64   `json:"seller_id"`
	TransactionID string  `json:"transaction_id"`
	AmountPaid    float64 `json:"amount_paid"`
}
