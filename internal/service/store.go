// Package service holds the storefront business logic: accounts, the cart
// engine and the catalog.  It depends on the store interfaces below, which
// the MySQL, MongoDB and memory repositories implement.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/queue"
)

// DefaultStoreTimeout bounds a single store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// CartStore applies atomic per-item cart updates.
type CartStore interface {
	IncrementCartItem(ctx context.Context, userID string, itemID int) error
	DecrementCartItem(ctx context.Context, userID string, itemID int) error
	CartByUserID(ctx context.Context, userID string) (model.Cart, error)
}

// ProductStore persists catalog entries.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)
}

// TokenIssuer mints identity tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// EventPublisher delivers domain events.  Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
