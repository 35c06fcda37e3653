package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/storefront-api/internal/model"
)

// cartSeedBatch bounds the number of rows inserted per statement when a
// new cart is seeded.
const cartSeedBatch = 500

// UserRepo reads and writes the users table.  The cart of a user lives in
// cart_items and is handled by CartRepo; lookups here leave User.Cart nil.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateUser inserts the user and seeds its cart inside one transaction.
// On success u.ID is populated.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, created_at) VALUES (?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := seedCartTx(ctx, tx, uint64(id), u.Cart); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	u.ID = strconv.FormatUint(uint64(id), 10)
	return nil
}

// seedCartTx writes one cart_items row per cart entry, in product id order.
func seedCartTx(ctx context.Context, tx *sql.Tx, userID uint64, cart model.Cart) error {
	if len(cart) == 0 {
		return nil
	}
	ids := make([]int, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for start := 0; start < len(ids); start += cartSeedBatch {
		end := start + cartSeedBatch
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		var b strings.Builder
		b.WriteString("INSERT INTO cart_items (user_id, item_id, quantity) VALUES ")
		args := make([]interface{}, 0, len(chunk)*3)
		for i, itemID := range chunk {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?, ?, ?)")
			args = append(args, userID, itemID, cart[itemID])
		}
		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// UserByEmail fetches a user by exact email.
func (r *UserRepo) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanOne(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ? LIMIT 1",
		email)
}

// UserByID fetches a user by id.  Ids that are not decimal integers are
// reported as ErrNotFound.
func (r *UserRepo) UserByID(ctx context.Context, id string) (*model.User, error) {
	uid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	return r.scanOne(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ? LIMIT 1",
		uid)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg interface{}) (*model.User, error) {
	var (
		u  model.User
		id uint64
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.ID = strconv.FormatUint(id, 10)
	return &u, nil
}

func parseUserID(id string) (uint64, error) {
	uid, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || uid == 0 {
		return 0, ErrNotFound
	}
	return uid, nil
}
