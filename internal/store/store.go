package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nyamalink/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateInventory inserts a new stock record
func (s *Store) CreateInventory(ctx context.Context, inv *models.Inventory) error {
	query := `
		INSERT INTO inventory (meat_type, quantity_kg, price_per_kg, slaughterhouse_name, is_public, owner_type, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, inv, query,
		inv.MeatType, inv.QuantityKg, inv.PricePerKg, inv.SlaughterhouseName,
		inv.IsPublic, inv.OwnerType, inv.OwnerID)
}

// GetInventoryByID retrieves a stock record by ID
func (s *Store) GetInventoryByID(ctx context.Context, id int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := s.db.GetContext(ctx, &inv, "SELECT * FROM inventory WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inventory not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInventoryByOwner retrieves all stock owned by one party
func (s *Store) ListInventoryByOwner(ctx context.Context, ownerType string, ownerID int64) ([]models.Inventory, error) {
	var items []models.Inventory
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM inventory WHERE owner_type = $1 AND owner_id = $2 ORDER BY created_at DESC",
		ownerType, ownerID)
	return items, err
}

// ListPublicInventory retrieves purchasable stock of a given owner type,
// excluding anything the viewer owns themselves.
func (s *Store) ListPublicInventory(ctx context.Context, ownerType string, excludeOwnerID int64) ([]models.Inventory, error) {
	var items []models.Inventory
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM inventory WHERE owner_type = $1 AND is_public = TRUE AND owner_id <> $2 ORDER BY created_at DESC",
		ownerType, excludeOwnerID)
	return items, err
}

// ListAllInventory retrieves every stock record (cache warm-up)
func (s *Store) ListAllInventory(ctx context.Context) ([]models.Inventory, error) {
	var items []models.Inventory
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM inventory ORDER BY id")
	return items, err
}

// UpdateInventory edits quantity, price and visibility of an owned record
func (s *Store) UpdateInventory(ctx context.Context, inv *models.Inventory) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET meat_type = $1, quantity_kg = $2, price_per_kg = $3,
		    slaughterhouse_name = $4, is_public = $5, updated_at = NOW()
		WHERE id = $6 AND owner_type = $7 AND owner_id = $8`,
		inv.MeatType, inv.QuantityKg, inv.PricePerKg, inv.SlaughterhouseName,
		inv.IsPublic, inv.ID, inv.OwnerType, inv.OwnerID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("inventory not found: %d", inv.ID)
	}
	return nil
}

// DeleteInventory removes an owned record
func (s *Store) DeleteInventory(ctx context.Context, id int64, ownerType string, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM inventory WHERE id = $1 AND owner_type = $2 AND owner_id = $3",
		id, ownerType, ownerID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("inventory not found: %d", id)
	}
	return nil
}

// DecrementStock atomically consumes stock. The WHERE clause carries the
// availability check, so concurrent placements cannot drive quantity below
// zero. Returns false when stock is insufficient.
func (s *Store) DecrementStock(ctx context.Context, id int64, quantityKg float64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_kg = quantity_kg - $1, updated_at = NOW()
		WHERE id = $2 AND quantity_kg >= $1`,
		quantityKg, id)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// RestoreStock returns previously consumed stock (compensation path)
func (s *Store) RestoreStock(ctx context.Context, id int64, quantityKg float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_kg = quantity_kg + $1, updated_at = NOW()
		WHERE id = $2`,
		quantityKg, id)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
