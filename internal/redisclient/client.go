package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

//go:embed scripts/restore_stock.lua
var restoreStockScript string

// Decrement outcomes.
const (
	StockUncached     = -1
	StockInsufficient = 0
	StockDecremented  = 1
)

type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
	restoreScript   *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:             rdb,
		decrementScript: redis.NewScript(decrementStockScript),
		restoreScript:   redis.NewScript(restoreStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockKey(inventoryID int64) string {
	return fmt.Sprintf("stock:%d", inventoryID)
}

// DecrementStock atomically consumes cached stock via Lua. Returns
// StockUncached when the item is not in the cache, StockInsufficient when
// the cached quantity is short, StockDecremented on success.
func (c *Client) DecrementStock(ctx context.Context, inventoryID int64, quantityKg float64) (int, error) {
	result, err := c.decrementScript.Run(ctx, c.rdb, []string{stockKey(inventoryID)}, quantityKg).Result()
	if err != nil {
		return StockUncached, fmt.Errorf("decrement stock script failed: %w", err)
	}

	outcome, ok := result.(int64)
	if !ok {
		return StockUncached, fmt.Errorf("unexpected script result type")
	}

	return int(outcome), nil
}

// RestoreStock atomically returns cached stock (compensation)
func (c *Client) RestoreStock(ctx context.Context, inventoryID int64, quantityKg float64) error {
	_, err := c.restoreScript.Run(ctx, c.rdb, []string{stockKey(inventoryID)}, quantityKg).Result()
	if err != nil {
		return fmt.Errorf("restore stock script failed: %w", err)
	}

	return nil
}

// SetStock seeds or refreshes the cached quantity for an item
func (c *Client) SetStock(ctx context.Context, inventoryID int64, quantityKg float64) error {
	return c.rdb.Set(ctx, stockKey(inventoryID), quantityKg, 0).Err()
}

// GetStock retrieves the cached quantity for an item
func (c *Client) GetStock(ctx context.Context, inventoryID int64) (float64, error) {
	val, err := c.rdb.Get(ctx, stockKey(inventoryID)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("stock not cached for inventory %d", inventoryID)
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(val, 64)
}

// DropStock removes the cached quantity when an item is deleted
func (c *Client) DropStock(ctx context.Context, inventoryID int64) error {
	return c.rdb.Del(ctx, stockKey(inventoryID)).Err()
}
