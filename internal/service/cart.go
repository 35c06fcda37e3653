package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/storefront-api/internal/metrics"
	"github.com/iliyamo/storefront-api/internal/model"
)

// CartEngine applies cart mutations for authenticated users.  Mutations for
// one user are serialized in process by a keyed lock and in the store by
// atomic updates.  Different users proceed in parallel.
type CartEngine struct {
	store   CartStore
	locks   *keyedMutex
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewCartEngine returns an engine bounding each store call by timeout.
func NewCartEngine(store CartStore, timeout time.Duration, log logrus.FieldLogger) *CartEngine {
	return &CartEngine{
		store:   store,
		locks:   newKeyedMutex(),
		timeout: timeout,
		log:     log.WithField("component", "cart"),
	}
}

// Add increments the quantity of itemID by one.
func (e *CartEngine) Add(ctx context.Context, userID string, itemID int) error {
	err := e.mutate(ctx, "add", userID, itemID, e.store.IncrementCartItem)
	metrics.RecordCartMutation("add", err)
	return err
}

// Remove decrements the quantity of itemID by one.  A zero quantity stays
// zero and the call still succeeds.
func (e *CartEngine) Remove(ctx context.Context, userID string, itemID int) error {
	err := e.mutate(ctx, "remove", userID, itemID, e.store.DecrementCartItem)
	metrics.RecordCartMutation("remove", err)
	return err
}

// Read returns the user's cart.
func (e *CartEngine) Read(ctx context.Context, userID string) (model.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("cart read: %w", ErrUnauthenticated)
	}
	cart, err := call(ctx, e.timeout, "cart read", func(ctx context.Context) (model.Cart, error) {
		return e.store.CartByUserID(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"user_id": userID, "units": cart.Total()}).Debug("cart read")
	return cart, nil
}

func (e *CartEngine) mutate(ctx context.Context, op, userID string, itemID int, fn func(context.Context, string, int) error) error {
	if userID == "" {
		return fmt.Errorf("cart %s: %w", op, ErrUnauthenticated)
	}
	if itemID < 0 {
		return fmt.Errorf("cart %s: %w: item id %d", op, ErrInvalidInput, itemID)
	}

	unlock, err := e.locks.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("cart %s: wait for lock: %w", op, err)
	}
	defer unlock()

	if err := exec(ctx, e.timeout, "cart "+op, func(ctx context.Context) error {
		return fn(ctx, userID, itemID)
	}); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"user_id": userID, "item_id": itemID, "op": op}).Debug("cart updated")
	return nil
}
