package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nyamalink/internal/models"
)

type purchaseRow struct {
	ID                    int64           `db:"id"`
	MeatID                int64           `db:"meat_id"`
	QuantityKg            float64         `db:"quantity_kg"`
	BuyerType             string          `db:"buyer_type"`
	BuyerID               int64           `db:"buyer_id"`
	AgentID               int64           `db:"agent_id"`
	MeatType              string          `db:"meat_type"`
	SlaughterhouseName    string          `db:"slaughterhouse_name"`
	PricePerKgAtOrder     float64         `db:"price_per_kg_at_order"`
	TotalPrice            float64         `db:"total_price"`
	Status                string          `db:"status"`
	PickupDetails         json.RawMessage `db:"pickup_details"`
	ReceptionConfirmation json.RawMessage `db:"reception_confirmation"`
	PaymentStatus         json.RawMessage `db:"payment_status"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

func (r *purchaseRow) toModel() (*models.Purchase, error) {
	p := &models.Purchase{
		ID:                 r.ID,
		MeatID:             r.MeatID,
		QuantityKg:         r.QuantityKg,
		BuyerType:          r.BuyerType,
		BuyerID:            r.BuyerID,
		AgentID:            r.AgentID,
		MeatType:           r.MeatType,
		SlaughterhouseName: r.SlaughterhouseName,
		PricePerKgAtOrder:  r.PricePerKgAtOrder,
		TotalPrice:         r.TotalPrice,
		Status:             models.Status(r.Status),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if len(r.PickupDetails) > 0 {
		p.PickupDetails = &models.DispatchDetails{}
		if err := json.Unmarshal(r.PickupDetails, p.PickupDetails); err != nil {
			return nil, fmt.Errorf("bad pickup_details for purchase %d: %w", r.ID, err)
		}
	}
	if len(r.ReceptionConfirmation) > 0 {
		p.ReceptionConfirmation = &models.DeliveryConfirmation{}
		if err := json.Unmarshal(r.ReceptionConfirmation, p.ReceptionConfirmation); err != nil {
			return nil, fmt.Errorf("bad reception_confirmation for purchase %d: %w", r.ID, err)
		}
	}
	if len(r.PaymentStatus) > 0 {
		if err := json.Unmarshal(r.PaymentStatus, &p.PaymentStatus); err != nil {
			return nil, fmt.Errorf("bad payment_status for purchase %d: %w", r.ID, err)
		}
	} else {
		p.PaymentStatus = models.PaymentStatus{Status: models.PaymentPending}
	}
	return p, nil
}

func rowsToPurchases(rows []purchaseRow) ([]models.Purchase, error) {
	purchases := make([]models.Purchase, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, nil
}

// CreatePurchase creates a new wholesale purchase in pending status
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	payment, err := json.Marshal(models.PaymentStatus{Status: models.PaymentPending})
	if err != nil {
		return err
	}

	query := `
		INSERT INTO purchases (meat_id, quantity_kg, buyer_type, buyer_id, agent_id,
			meat_type, slaughterhouse_name, price_per_kg_at_order, total_price, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	purchase.PaymentStatus = models.PaymentStatus{Status: models.PaymentPending}
	return s.db.QueryRowxContext(ctx, query,
		purchase.MeatID, purchase.QuantityKg, purchase.BuyerType, purchase.BuyerID, purchase.AgentID,
		purchase.MeatType, purchase.SlaughterhouseName, purchase.PricePerKgAtOrder,
		purchase.TotalPrice, string(purchase.Status), payment,
	).Scan(&purchase.ID, &purchase.CreatedAt, &purchase.UpdatedAt)
}

// GetPurchaseByID retrieves a purchase by ID
func (s *Store) GetPurchaseByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var row purchaseRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM purchases WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// ListPurchasesByBuyer retrieves purchases placed by one buyer
func (s *Store) ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Purchase, error) {
	var rows []purchaseRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM purchases WHERE buyer_id = $1 ORDER BY created_at DESC", buyerID)
	if err != nil {
		return nil, err
	}
	return rowsToPurchases(rows)
}

// ListPurchasesByAgent retrieves incoming purchases for one selling agent
func (s *Store) ListPurchasesByAgent(ctx context.Context, agentID int64) ([]models.Purchase, error) {
	var rows []purchaseRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM purchases WHERE agent_id = $1 ORDER BY created_at DESC", agentID)
	if err != nil {
		return nil, err
	}
	return rowsToPurchases(rows)
}

// UpdatePurchaseStatus advances a purchase's status, optionally attaching
// pickup details and a reception confirmation in the same write. The update
// only applies while the row still holds the status the caller read; false
// means the purchase moved concurrently and nothing was written.
func (s *Store) UpdatePurchaseStatus(ctx context.Context, purchaseID int64, from, to models.Status,
	pickup *models.DispatchDetails, confirmation *models.DeliveryConfirmation) (bool, error) {

	var pickupJSON, confirmationJSON interface{}
	if pickup != nil {
		b, err := json.Marshal(pickup)
		if err != nil {
			return false, err
		}
		pickupJSON = b
	}
	if confirmation != nil {
		b, err := json.Marshal(confirmation)
		if err != nil {
			return false, err
		}
		confirmationJSON = b
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET status = $1,
		    pickup_details = COALESCE($2, pickup_details),
		    reception_confirmation = COALESCE($3, reception_confirmation),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		string(to), pickupJSON, confirmationJSON, purchaseID, string(from))
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// SetPurchasePaymentStatus overwrites the payment sub-record after gateway
// reconciliation.
func (s *Store) SetPurchasePaymentStatus(ctx context.Context, purchaseID int64, payment models.PaymentStatus) error {
	b, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE purchases SET payment_status = $1, updated_at = NOW() WHERE id = $2",
		b, purchaseID)
	return err
}
