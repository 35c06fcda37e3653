package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestCreateUser_SeedsCartInTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^INSERT INTO users \(name, email, password_hash, created_at\) VALUES`).
		WithArgs("Ann", "a@x.com", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`(?s)^INSERT INTO cart_items \(user_id, item_id, quantity\) VALUES \(\?, \?, \?\),\(\?, \?, \?\),\(\?, \?, \?\)$`).
		WithArgs(uint64(7), 0, 0, uint64(7), 1, 0, uint64(7), 2, 0).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	u := &model.User{Name: "Ann", Email: "a@x.com", PasswordHash: "hash", Cart: model.NewCart(3)}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	assert.Equal(t, "7", u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_SeedsInBatches(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`^INSERT INTO users`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`^INSERT INTO cart_items`).WillReturnResult(sqlmock.NewResult(0, cartSeedBatch))
	mock.ExpectExec(`^INSERT INTO cart_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := &model.User{Email: "b@x.com", PasswordHash: "h", Cart: model.NewCart(cartSeedBatch + 1)}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`^INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_users_email'"})
	mock.ExpectRollback()

	err := repo.CreateUser(context.Background(), &model.User{Email: "a@x.com", Cart: model.NewCart(2)})
	assert.ErrorIs(t, err, ErrEmailExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`^SELECT id, name, email, password_hash, created_at FROM users WHERE email = \? LIMIT 1$`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(uint64(3), "Ann", "a@x.com", "hash", created))

	u, err := repo.UserByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "3", u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`^SELECT .* FROM users WHERE email = \?`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserByID_MalformedID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	for _, id := range []string{"", "abc", "0", "-1"} {
		_, err := repo.UserByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCartItem_Upsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`(?s)^INSERT INTO cart_items .*VALUES \(\?, \?, 1\).*ON DUPLICATE KEY UPDATE quantity = quantity \+ 1$`).
		WithArgs(uint64(9), 5).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.IncrementCartItem(context.Background(), "9", 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementCartItem_MissingUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`^INSERT INTO cart_items`).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err := repo.IncrementCartItem(context.Background(), "9", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementCartItem_FloorsAtZero(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`^UPDATE cart_items SET quantity = quantity - 1 WHERE user_id = \? AND item_id = \? AND quantity > 0$`).
		WithArgs(uint64(9), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT 1 FROM users WHERE id = \? LIMIT 1$`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, repo.DecrementCartItem(context.Background(), "9", 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementCartItem_MissingUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`^UPDATE cart_items`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT 1 FROM users`).WillReturnError(sql.ErrNoRows)

	err := repo.DecrementCartItem(context.Background(), "9", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementCartItem_Positive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`^UPDATE cart_items`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DecrementCartItem(context.Background(), "9", 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectQuery(`^SELECT item_id, quantity FROM cart_items WHERE user_id = \? ORDER BY item_id$`).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "quantity"}).AddRow(0, 0).AddRow(5, 2))

	cart, err := repo.CartByUserID(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, model.Cart{0: 0, 5: 2}, cart)
}

func TestCartByUserID_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectQuery(`^SELECT item_id, quantity FROM cart_items`).WillReturnError(errors.New("db down"))

	_, err := repo.CartByUserID(context.Background(), "4")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestInsertProduct_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectExec(`^INSERT INTO products \(id, name, image, category, new_price, old_price, created_at, available\)`).
		WithArgs(int64(1), "Shirt", "img", "women", 10.5, 20.0, sqlmock.AnyArg(), true).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1'"})

	err := repo.InsertProduct(context.Background(), &model.Product{
		ID: 1, Name: "Shirt", Image: "img", Category: "women", NewPrice: 10.5, OldPrice: 20, Available: true,
	})
	assert.ErrorIs(t, err, ErrProductExists)
}

func TestDeleteProduct(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectExec(`^DELETE FROM products WHERE id = \?$`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM products WHERE id = \?$`).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.DeleteProduct(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListProductsByCategory_Limit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now().UTC()

	cols := []string{"id", "name", "image", "category", "new_price", "old_price", "created_at", "available"}
	mock.ExpectQuery(`^SELECT .* FROM products WHERE category = \? ORDER BY id LIMIT \?$`).
		WithArgs("women", 4).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "a", "i", "women", 1.0, 2.0, now, true).
			AddRow(int64(3), "b", "i", "women", 1.0, 2.0, now, false))

	out, err := repo.ListProductsByCategory(context.Background(), "women", 4)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.False(t, out[1].Available)
}

func TestListProducts_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(`^SELECT .* FROM products ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "category", "new_price", "old_price", "created_at", "available"}))

	out, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
