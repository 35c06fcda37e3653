package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/storefront-api/internal/model"
)

// CartRepo mutates cart_items with single-statement updates so that the
// database serializes concurrent writers for the same (user, item) row.
// There is no read-modify-write of the whole cart.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// IncrementCartItem adds one unit of itemID.  A missing row counts as zero.
// ErrNotFound is returned when the user does not exist.
func (r *CartRepo) IncrementCartItem(ctx context.Context, userID string, itemID int) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, item_id, quantity) VALUES (?, ?, 1)
		 ON DUPLICATE KEY UPDATE quantity = quantity + 1`,
		uid, itemID)
	if err != nil {
		if isMissingParent(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DecrementCartItem removes one unit of itemID when the quantity is
// positive and does nothing otherwise.  The quantity never drops below zero.
func (r *CartRepo) DecrementCartItem(ctx context.Context, userID string, itemID int) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity = quantity - 1 WHERE user_id = ? AND item_id = ? AND quantity > 0",
		uid, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// nothing to decrement: either already zero or the user is gone
	return r.ensureUser(ctx, uid)
}

// CartByUserID returns every cart entry of the user.
func (r *CartRepo) CartByUserID(ctx context.Context, userID string) (model.Cart, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT item_id, quantity FROM cart_items WHERE user_id = ? ORDER BY item_id", uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cart := model.Cart{}
	for rows.Next() {
		var itemID, qty int
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, err
		}
		cart[itemID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		if err := r.ensureUser(ctx, uid); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func (r *CartRepo) ensureUser(ctx context.Context, uid uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ? LIMIT 1", uid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
