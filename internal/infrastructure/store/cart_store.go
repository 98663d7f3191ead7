package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/cart"
)

// PostgresCartStore implements cart.Store using PostgreSQL
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

// WithinTx runs fn inside a read-committed transaction. Any error from fn or
// from commit rolls the transaction back.
func (s *PostgresCartStore) WithinTx(ctx context.Context, fn func(tx cart.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Persistence("begin", err)
	}
	defer tx.Rollback()

	if err := fn(&postgresCartTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Persistence("commit", err)
	}
	return nil
}

// Lines returns the cart joined with products in insertion order
func (s *PostgresCartStore) Lines(ctx context.Context, cartID cart.ID) ([]cart.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at,
		       p.id, p.title, p.price, p.image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`, string(cartID))
	if err != nil {
		return nil, apperr.Persistence("list cart", err)
	}
	defer rows.Close()

	lines := make([]cart.Line, 0)
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(
			&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &l.CreatedAt,
			&l.Product.ID, &l.Product.Title, &l.Product.Price, &l.Product.Image,
		); err != nil {
			return nil, apperr.Persistence("scan cart line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list cart", err)
	}
	return lines, nil
}

// CountItems sums quantities across the cart
func (s *PostgresCartStore) CountItems(ctx context.Context, cartID cart.ID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1`, string(cartID),
	).Scan(&n)
	if err != nil {
		return 0, apperr.Persistence("count cart", err)
	}
	return n, nil
}

func (s *PostgresCartStore) Clear(ctx context.Context, cartID cart.ID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, string(cartID))
	return apperr.Persistence("clear cart", err)
}

type postgresCartTx struct {
	tx *sql.Tx
}

// ProductExists takes a share lock so the product cannot be deleted before
// the transaction commits.
func (t *postgresCartTx) ProductExists(ctx context.Context, productID int) (bool, error) {
	var id int
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR SHARE`, productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Persistence("product exists", err)
	}
	return true, nil
}

// Increment upserts on (cart_id, product_id) so concurrent adds merge into one row.
func (t *postgresCartTx) Increment(ctx context.Context, cartID cart.ID, productID, delta int) (*cart.Item, error) {
	var item cart.Item
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity, created_at`,
		string(cartID), productID, delta,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return nil, apperr.Persistence("increment item", err)
	}
	return &item, nil
}

func (t *postgresCartTx) LockItem(ctx context.Context, cartID cart.ID, productID int) (*cart.Item, error) {
	var item cart.Item
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		FOR UPDATE`,
		string(cartID), productID,
	).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("lock item", err)
	}
	return &item, nil
}

func (t *postgresCartTx) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	return apperr.Persistence("set quantity", err)
}

func (t *postgresCartTx) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return apperr.Persistence("delete item", err)
}
