package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nyamalink/internal/models"
)

// orderRow mirrors the orders table. The dispatch, payment and confirmation
// sub-records live in jsonb columns and are unpacked into the model.
type orderRow struct {
	ID                   int64           `db:"id"`
	CustomerID           int64           `db:"customer_id"`
	ButcherID            int64           `db:"butcher_id"`
	ButcheryName         string          `db:"butchery_name"`
	MeatID               int64           `db:"meat_id"`
	MeatType             string          `db:"meat_type"`
	PricePerKgAtOrder    float64         `db:"price_per_kg_at_order"`
	QuantityKg           float64         `db:"quantity_kg"`
	TotalPrice           float64         `db:"total_price"`
	Status               string          `db:"status"`
	DeliveryLongitude    float64         `db:"delivery_longitude"`
	DeliveryLatitude     float64         `db:"delivery_latitude"`
	DispatchDetails      json.RawMessage `db:"dispatch_details"`
	PaymentStatus        json.RawMessage `db:"payment_status"`
	DeliveryConfirmation json.RawMessage `db:"delivery_confirmation"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r *orderRow) toModel() (*models.Order, error) {
	o := &models.Order{
		ID:                r.ID,
		CustomerID:        r.CustomerID,
		ButcherID:         r.ButcherID,
		ButcheryName:      r.ButcheryName,
		MeatID:            r.MeatID,
		MeatType:          r.MeatType,
		PricePerKgAtOrder: r.PricePerKgAtOrder,
		QuantityKg:        r.QuantityKg,
		TotalPrice:        r.TotalPrice,
		Status:            models.Status(r.Status),
		DeliveryLongitude: r.DeliveryLongitude,
		DeliveryLatitude:  r.DeliveryLatitude,
		DeliveryLocation:  models.GeoPoint{Longitude: r.DeliveryLongitude, Latitude: r.DeliveryLatitude},
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if len(r.DispatchDetails) > 0 {
		o.DispatchDetails = &models.DispatchDetails{}
		if err := json.Unmarshal(r.DispatchDetails, o.DispatchDetails); err != nil {
			return nil, fmt.Errorf("bad dispatch_details for order %d: %w", r.ID, err)
		}
	}
	if len(r.PaymentStatus) > 0 {
		if err := json.Unmarshal(r.PaymentStatus, &o.PaymentStatus); err != nil {
			return nil, fmt.Errorf("bad payment_status for order %d: %w", r.ID, err)
		}
	} else {
		o.PaymentStatus = models.PaymentStatus{Status: models.PaymentPending}
	}
	if len(r.DeliveryConfirmation) > 0 {
		o.DeliveryConfirmation = &models.DeliveryConfirmation{}
		if err := json.Unmarshal(r.DeliveryConfirmation, o.DeliveryConfirmation); err != nil {
			return nil, fmt.Errorf("bad delivery_confirmation for order %d: %w", r.ID, err)
		}
	}
	return o, nil
}

func rowsToOrders(rows []orderRow) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// CreateOrder creates a new order in pending status with the price snapshot
// already computed by the service layer.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	payment, err := json.Marshal(models.PaymentStatus{Status: models.PaymentPending})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (customer_id, butcher_id, butchery_name, meat_id, meat_type,
			price_per_kg_at_order, quantity_kg, total_price, status,
			delivery_longitude, delivery_latitude, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	order.PaymentStatus = models.PaymentStatus{Status: models.PaymentPending}
	return s.db.QueryRowxContext(ctx, query,
		order.CustomerID, order.ButcherID, order.ButcheryName, order.MeatID, order.MeatType,
		order.PricePerKgAtOrder, order.QuantityKg, order.TotalPrice, string(order.Status),
		order.DeliveryLongitude, order.DeliveryLatitude, payment,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// ListOrdersByCustomer retrieves orders placed by one customer
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	if err != nil {
		return nil, err
	}
	return rowsToOrders(rows)
}

// ListOrdersByButcher retrieves incoming orders for one butcher
func (s *Store) ListOrdersByButcher(ctx context.Context, butcherID int64) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM orders WHERE butcher_id = $1 ORDER BY created_at DESC", butcherID)
	if err != nil {
		return nil, err
	}
	return rowsToOrders(rows)
}

// UpdateOrderStatus advances an order's status, optionally attaching dispatch
// details and a delivery confirmation in the same write. The update only
// applies while the row still holds the status the caller read; false means
// the order moved concurrently and nothing was written.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, from, to models.Status,
	dispatch *models.DispatchDetails, confirmation *models.DeliveryConfirmation) (bool, error) {

	var dispatchJSON, confirmationJSON interface{}
	if dispatch != nil {
		b, err := json.Marshal(dispatch)
		if err != nil {
			return false, err
		}
		dispatchJSON = b
	}
	if confirmation != nil {
		b, err := json.Marshal(confirmation)
		if err != nil {
			return false, err
		}
		confirmationJSON = b
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    dispatch_details = COALESCE($2, dispatch_details),
		    delivery_confirmation = COALESCE($3, delivery_confirmation),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		string(to), dispatchJSON, confirmationJSON, orderID, string(from))
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// SetOrderPaymentStatus overwrites the payment sub-record after gateway
// reconciliation.
func (s *Store) SetOrderPaymentStatus(ctx context.Context, orderID int64, payment models.PaymentStatus) error {
	b, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2",
		b, orderID)
	return err
}
