package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/storefront-api/internal/model"
)

// ProductRepo provides access to the products table.  The business id
// column carries a unique index, which is the final guard against two
// writers computing the same next id.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = "id, name, image, category, new_price, old_price, created_at, available"

// InsertProduct stores p.  A duplicate business id yields ErrProductExists.
func (r *ProductRepo) InsertProduct(ctx context.Context, p *model.Product) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.Date, p.Available)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrProductExists
		}
		return err
	}
	return nil
}

// DeleteProduct removes the product with the given business id and
// reports whether a row was deleted.
func (r *ProductRepo) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListProducts returns the whole catalog in id order.
func (r *ProductRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// ListProductsByCategory returns up to limit products of a category in id
// order.  A non-positive limit returns every match.
func (r *ProductRepo) ListProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	if limit > 0 {
		return r.query(ctx,
			"SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY id LIMIT ?",
			category, limit)
	}
	return r.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE category = ? ORDER BY id",
		category)
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.NewPrice, &p.OldPrice, &p.Date, &p.Available); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
