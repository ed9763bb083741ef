package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"rental-quotes/cart"
)

// CartStorage keeps serialized carts in the cart_sessions table, keyed by session id
type CartStorage struct {
	db *sql.DB
}

// NewCartStorage creates a new CartStorage
func NewCartStorage(db *sql.DB) *CartStorage {
	return &CartStorage{db: db}
}

// Ensure CartStorage implements cart.Storage
var _ cart.Storage = (*CartStorage)(nil)

// Get returns the stored cart for key
func (s *CartStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var items string
	err := s.db.QueryRowContext(ctx, `SELECT items FROM cart_sessions WHERE session_key = $1`, key).Scan(&items)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		log.Printf("❌ CartStorage.Get: Error reading cart %s: %v", key, err)
		return "", false, fmt.Errorf("failed to read cart: %w", err)
	}
	return items, true, nil
}

// Set stores the cart for key, replacing any previous value
func (s *CartStorage) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO cart_sessions (session_key, items, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (session_key)
		DO UPDATE SET items = excluded.items, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		log.Printf("❌ CartStorage.Set: Error saving cart %s: %v", key, err)
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
