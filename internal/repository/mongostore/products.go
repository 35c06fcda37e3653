package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
)

func (d productDoc) toModel() model.Product {
	return model.Product{
		ID:        d.ID,
		Name:      d.Name,
		Image:     d.Image,
		Category:  d.Category,
		NewPrice:  d.NewPrice,
		OldPrice:  d.OldPrice,
		Date:      d.Date,
		Available: d.Available,
	}
}

// InsertProduct stores p.  A duplicate business id yields ErrProductExists.
func (s *Store) InsertProduct(ctx context.Context, p *model.Product) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	_, err := s.products.InsertOne(ctx, productDoc{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Category:  p.Category,
		NewPrice:  p.NewPrice,
		OldPrice:  p.OldPrice,
		Date:      p.Date,
		Available: p.Available,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrProductExists
		}
		return err
	}
	return nil
}

// DeleteProduct removes the product with the given business id.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	res, err := s.products.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListProducts returns the catalog sorted by business id, which is
// insertion order since ids only grow.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

// ListProductsByCategory returns the first limit products of a category.
func (s *Store) ListProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, bson.M{"category": category}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Product, error) {
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
