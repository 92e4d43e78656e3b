package models

import "time"

// Roles a user can hold on the platform.
const (
	RoleCustomer = "customer"
	RoleButcher  = "butcher"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// Inventory owner types.
const (
	OwnerTypeAgent   = "agent"
	OwnerTypeButcher = "butcher"
)

// GeoPoint is a GeoJSON Point stored as longitude/latitude columns.
type GeoPoint struct {
	Longitude float64 `db:"longitude" json:"longitude"`
	Latitude  float64 `db:"latitude" json:"latitude"`
}

// User represents a platform account (customer, butcher, agent or admin)
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	Role         string    `db:"role" json:"role"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Inventory is a meat stock record owned by an agent or butcher.
// QuantityKg never goes negative: decrements happen through a single
// conditional UPDATE, not a read-then-write.
type Inventory struct {
	ID                 int64     `db:"id" json:"id"`
	MeatType           string    `db:"meat_type" json:"meat_type"`
	QuantityKg         float64   `db:"quantity_kg" json:"quantity_kg"`
	PricePerKg         float64   `db:"price_per_kg" json:"price_per_kg"`
	SlaughterhouseName string    `db:"slaughterhouse_name" json:"slaughterhouse_name"`
	IsPublic           bool      `db:"is_public" json:"is_public"`
	OwnerType          string    `db:"owner_type" json:"owner_type"`
	OwnerID            int64     `db:"owner_id" json:"owner_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DispatchDetails is filled in when an order or purchase is dispatched.
type DispatchDetails struct {
	TrackingNumber        string     `json:"tracking_number"`
	Carrier               string     `json:"carrier"`
	DispatchDate          *time.Time `json:"dispatch_date,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
}

// PaymentStatus tracks gateway reconciliation, independent of delivery status.
type PaymentStatus struct {
	Status         string     `json:"status"`
	TransactionID  string     `json:"transaction_id,omitempty"`
	PaymentGateway string     `json:"payment_gateway,omitempty"`
	PaymentDate    *time.Time `json:"payment_date,omitempty"`
	AmountPaid     float64    `json:"amount_paid,omitempty"`
}

// DeliveryConfirmation records who received the goods and when.
type DeliveryConfirmation struct {
	ReceivedBy   string     `json:"received_by"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
}

// Payment status values.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Order is the customer-to-butcher leg. Price is snapshotted at creation:
// TotalPrice = PricePerKgAtOrder * QuantityKg, immune to later price edits.
type Order struct {
	ID                   int64                 `db:"id" json:"id"`
	CustomerID           int64                 `db:"customer_id" json:"customer_id"`
	ButcherID            int64                 `db:"butcher_id" json:"butcher_id"`
	ButcheryName         string                `db:"butchery_name" json:"butchery_name"`
	MeatID               int64                 `db:"meat_id" json:"meat_id"`
	MeatType             string                `db:"meat_type" json:"meat_type"`
	PricePerKgAtOrder    float64               `db:"price_per_kg_at_order" json:"price_per_kg_at_order"`
	QuantityKg           float64               `db:"quantity_kg" json:"quantity_kg"`
	TotalPrice           float64               `db:"total_price" json:"total_price"`
	Status               Status                `db:"status" json:"status"`
	DeliveryLongitude    float64               `db:"delivery_longitude" json:"-"`
	DeliveryLatitude     float64               `db:"delivery_latitude" json:"-"`
	DeliveryLocation     GeoPoint              `db:"-" json:"delivery_location"`
	DispatchDetails      *DispatchDetails      `db:"-" json:"dispatch_details,omitempty"`
	PaymentStatus        PaymentStatus         `db:"-" json:"payment_status"`
	DeliveryConfirmation *DeliveryConfirmation `db:"-" json:"delivery_confirmation,omitempty"`
	CreatedAt            time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `db:"updated_at" json:"updated_at"`
}

// Purchase is the wholesale butcher/agent-to-agent leg.
type Purchase struct {
	ID                    int64                 `db:"id" json:"id"`
	MeatID                int64                 `db:"meat_id" json:"meat_id"`
	QuantityKg            float64               `db:"quantity_kg" json:"quantity_kg"`
	BuyerType             string                `db:"buyer_type" json:"buyer_type"`
	BuyerID               int64                 `db:"buyer_id" json:"buyer_id"`
	AgentID               int64                 `db:"agent_id" json:"agent_id"`
	MeatType              string                `db:"meat_type" json:"meat_type"`
	SlaughterhouseName    string                `db:"slaughterhouse_name" json:"slaughterhouse_name"`
	PricePerKgAtOrder     float64               `db:"price_per_kg_at_order" json:"price_per_kg_at_order"`
	TotalPrice            float64               `db:"total_price" json:"total_price"`
	Status                Status                `db:"status" json:"status"`
	PickupDetails         *DispatchDetails      `db:"-" json:"pickup_details,omitempty"`
	ReceptionConfirmation *DeliveryConfirmation `db:"-" json:"reception_confirmation,omitempty"`
	PaymentStatus         PaymentStatus         `db:"-" json:"payment_status"`
	CreatedAt             time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time             `db:"updated_at" json:"updated_at"`
}

// Notification is a durable per-user message fed by domain events.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// MinOrderQuantityKg is the smallest quantity an order or purchase may request.
const MinOrderQuantityKg = 0.1

// ProcessedEvent for webhook and consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
