package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/domain/product"
)

const productColumns = `id, title, description, price, image, category, rating_rate, rating_count`

// PostgresProductStore implements product.Store using PostgreSQL
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Image, &p.Category, &p.Rating.Rate, &p.Rating.Count)
	return p, err
}

// List returns every product ordered by id
func (s *PostgresProductStore) List(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Persistence("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list products", err)
	}
	return products, nil
}

func (s *PostgresProductStore) Get(ctx context.Context, id int) (*product.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, apperr.Persistence("get product", err)
	}
	return &p, nil
}

func (s *PostgresProductStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, apperr.Persistence("count products", err)
	}
	return n, nil
}

// Categories returns the distinct categories in alphabetical order
func (s *PostgresProductStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, apperr.Persistence("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	return categories, nil
}

// ReplaceAll deletes the catalog and inserts products in one transaction.
// Cart items referencing the old rows are removed by the foreign key cascade.
// Readers see either the old catalog or the new one.
func (s *PostgresProductStore) ReplaceAll(ctx context.Context, products []product.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Persistence("begin replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return apperr.Persistence("clear products", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return apperr.Persistence("prepare insert", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Description, p.Price, p.Image, p.Category, p.Rating.Rate, p.Rating.Count,
		); err != nil {
			return apperr.Persistence("insert product", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Persistence("commit replace", err)
	}
	return nil
}
