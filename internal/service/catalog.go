package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/storefront-api/internal/metrics"
	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/queue"
)

const (
	newCollectionSize = 8
	popularSize       = 4
)

// Sequencer derives the next product id from the catalog contents.
//
// NextID scans every product, so its cost grows with the catalog.  It is
// only correct when callers serialize NextID with the following insert.
type Sequencer struct {
	store   ProductStore
	timeout time.Duration
}

// NewSequencer returns a sequencer over store.
func NewSequencer(store ProductStore, timeout time.Duration) *Sequencer {
	return &Sequencer{store: store, timeout: timeout}
}

// NextID returns max(id)+1, or 1 for an empty catalog.
func (s *Sequencer) NextID(ctx context.Context) (int64, error) {
	products, err := call(ctx, s.timeout, "next product id", s.store.ListProducts)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1, nil
}

// NewProduct is the input for Catalog.AddProduct.
type NewProduct struct {
	Name     string
	Image    string
	Category string
	NewPrice float64
	OldPrice float64
}

// Catalog manages products.  Writers are serialized so the sequencer never
// hands the same id to two inserts from this process.  The store's unique
// index on id covers other processes.
type Catalog struct {
	mu      sync.Mutex
	store   ProductStore
	seq     *Sequencer
	events  EventPublisher
	timeout time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewCatalog wires the catalog service.  events may be nil.
func NewCatalog(store ProductStore, events EventPublisher, timeout time.Duration, log logrus.FieldLogger) *Catalog {
	if events == nil {
		events = queue.Discard{}
	}
	return &Catalog{
		store:   store,
		seq:     NewSequencer(store, timeout),
		events:  events,
		timeout: timeout,
		log:     log.WithField("component", "catalog"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddProduct assigns the next id and stores the product as available.
func (c *Catalog) AddProduct(ctx context.Context, in NewProduct) (model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Name == "":
		return model.Product{}, fmt.Errorf("add product: %w: name is required", ErrInvalidInput)
	case in.Category == "":
		return model.Product{}, fmt.Errorf("add product: %w: category is required", ErrInvalidInput)
	case !finite(in.NewPrice) || !finite(in.OldPrice):
		return model.Product{}, fmt.Errorf("add product: %w: prices must be finite numbers", ErrInvalidInput)
	case in.NewPrice < 0 || in.OldPrice < 0:
		return model.Product{}, fmt.Errorf("add product: %w: prices must not be negative", ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.seq.NextID(ctx)
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		ID:        id,
		Name:      in.Name,
		Image:     in.Image,
		Category:  in.Category,
		NewPrice:  in.NewPrice,
		OldPrice:  in.OldPrice,
		Date:      c.now(),
		Available: true,
	}
	if err := exec(ctx, c.timeout, "add product", func(ctx context.Context) error {
		return c.store.InsertProduct(ctx, &p)
	}); err != nil {
		return model.Product{}, err
	}

	metrics.RecordProductCreated()
	c.log.WithFields(logrus.Fields{"product_id": p.ID, "name": p.Name}).Info("product added")
	publish(ctx, c.events, c.log, queue.Event{
		Type:       queue.EventProductAdded,
		ProductID:  p.ID,
		Name:       p.Name,
		Category:   p.Category,
		NewPrice:   p.NewPrice,
		OldPrice:   p.OldPrice,
		OccurredAt: p.Date,
	})
	return p, nil
}

// RemoveProduct deletes the product with id.  name is informational and
// only travels with the event.
func (c *Catalog) RemoveProduct(ctx context.Context, id int64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted, err := call(ctx, c.timeout, "remove product", func(ctx context.Context) (bool, error) {
		return c.store.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("remove product %d: %w", id, ErrNotFound)
	}
	c.log.WithField("product_id", id).Info("product removed")
	publish(ctx, c.events, c.log, queue.Event{
		Type:       queue.EventProductRemoved,
		ProductID:  id,
		Name:       name,
		OccurredAt: c.now(),
	})
	return nil
}

// AllProducts lists the catalog in id order.
func (c *Catalog) AllProducts(ctx context.Context) ([]model.Product, error) {
	return call(ctx, c.timeout, "all products", c.store.ListProducts)
}

// NewCollections skips the oldest product and returns up to the eight
// most recent of the rest.
func (c *Catalog) NewCollections(ctx context.Context) ([]model.Product, error) {
	all, err := c.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) <= 1 {
		return []model.Product{}, nil
	}
	rest := all[1:]
	if len(rest) > newCollectionSize {
		rest = rest[len(rest)-newCollectionSize:]
	}
	return rest, nil
}

// PopularIn returns the first four products of category in id order.
func (c *Catalog) PopularIn(ctx context.Context, category string) ([]model.Product, error) {
	return call(ctx, c.timeout, "popular products", func(ctx context.Context) ([]model.Product, error) {
		return c.store.ListProductsByCategory(ctx, category, popularSize)
	})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
