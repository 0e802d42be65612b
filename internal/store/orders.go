package store

import (
	"context"
	"encoding/json"
	"time"
)

type Order struct {
	ID              string
	ProductID       string
	Email           string
	Color           string
	Size            string
	Quantity        int
	Status          string
	TotalCents      int64
	Currency        string
	CustomizedSides []string
	Designs         json.RawMessage
	RawAssets       json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const orderColumns = `id, product_id, email, color, size, quantity, status,
	total_cents, currency, customized_sides, designs, raw_assets, created_at, updated_at`

func (s *Store) CreateOrder(ctx context.Context, o Order) (Order, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO orders (id, product_id, email, color, size, quantity, status,
			total_cents, currency, customized_sides, designs, raw_assets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+orderColumns,
		o.ID, o.ProductID, o.Email, o.Color, o.Size, o.Quantity, o.Status,
		o.TotalCents, o.Currency, o.CustomizedSides, o.Designs, o.RawAssets)
	return scanOrder(row)
}

func (s *Store) GetOrder(ctx context.Context, id string) (Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *Store) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateOrderStatus applies a status transition (pending → paid/cancelled)
// driven by the external payment collaborator.
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns, id, status)
	return scanOrder(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ProductID, &o.Email, &o.Color, &o.Size, &o.Quantity,
		&o.Status, &o.TotalCents, &o.Currency, &o.CustomizedSides, &o.Designs,
		&o.RawAssets, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
