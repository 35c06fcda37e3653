// Package memory is an in-process store for local development and tests.
// A single mutex guards all state, which makes every operation atomic in
// the same way the database-backed stores are.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
)

// Store holds users and products in maps.
type Store struct {
	mu       sync.Mutex
	nextUser uint64
	users    map[string]*model.User
	byEmail  map[string]string
	products map[int64]model.Product
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		byEmail:  make(map[string]string),
		products: make(map[int64]model.Product),
	}
}

func copyUser(u *model.User) *model.User {
	out := *u
	out.Cart = make(model.Cart, len(u.Cart))
	for k, v := range u.Cart {
		out.Cart[k] = v
	}
	return &out
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.nextUser++
	u.ID = strconv.FormatUint(s.nextUser, 10)
	s.users[u.ID] = copyUser(u)
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(s.users[id]), nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) IncrementCartItem(ctx context.Context, userID string, itemID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Cart == nil {
		u.Cart = model.Cart{}
	}
	u.Cart[itemID]++
	return nil
}

func (s *Store) DecrementCartItem(ctx context.Context, userID string, itemID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Cart[itemID] > 0 {
		u.Cart[itemID]--
	}
	return nil
}

func (s *Store) CartByUserID(ctx context.Context, userID string) (model.Cart, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Cart, nil
}

func (s *Store) InsertProduct(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return repository.ErrProductExists
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.ListProductsByCategory(ctx, "", 0)
}

// ListProductsByCategory filters by category; an empty category matches
// every product.
func (s *Store) ListProductsByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
