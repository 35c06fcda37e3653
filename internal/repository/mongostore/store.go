// Package mongostore keeps users, carts and products in MongoDB.  A user's
// cart is embedded in the user document as cartData, an object keyed by the
// stringified product id.  Cart mutations are single-document $inc updates,
// so the server serializes concurrent writers and no update is lost.
package mongostore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	CartData map[string]int     `bson:"cartData"`
	Date     time.Time          `bson:"date"`
}

type productDoc struct {
	OID       primitive.ObjectID `bson:"_id,omitempty"`
	ID        int64              `bson:"id"`
	Name      string             `bson:"name"`
	Image     string             `bson:"image"`
	Category  string             `bson:"category"`
	NewPrice  float64            `bson:"new_price"`
	OldPrice  float64            `bson:"old_price"`
	Date      time.Time          `bson:"date"`
	Available bool               `bson:"available"`
}

// Store implements the user, cart and product stores on one database.
type Store struct {
	users    *mongo.Collection
	products *mongo.Collection
}

// New binds a Store to db.
func New(db *mongo.Database) *Store {
	return &Store{
		users:    db.Collection(usersCollection),
		products: db.Collection(productsCollection),
	}
}

// EnsureIndexes creates the unique indexes the store relies on: users.email
// backs email uniqueness and products.id backs the sequential business id.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_users_email"),
	}); err != nil {
		return err
	}
	_, err := s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_products_id"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_products_category"),
		},
	})
	return err
}

func cartKey(itemID int) string { return "cartData." + strconv.Itoa(itemID) }

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func toCartData(c model.Cart) map[string]int {
	out := make(map[string]int, len(c))
	for k, v := range c {
		out[strconv.Itoa(k)] = v
	}
	return out
}

func fromCartData(m map[string]int) model.Cart {
	out := make(model.Cart, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Cart:         fromCartData(d.CartData),
		CreatedAt:    d.Date,
	}
}

// CreateUser inserts u with its seeded cart.  The unique email index turns a
// concurrent duplicate into ErrEmailExists.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.users.InsertOne(ctx, userDoc{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		CartData: toCartData(u.Cart),
		Date:     u.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailExists
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

// UserByEmail fetches a user by exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

// UserByID fetches a user by ObjectID hex string.
func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

// IncrementCartItem adds one unit of itemID; $inc treats a missing field as zero.
func (s *Store) IncrementCartItem(ctx context.Context, userID string, itemID int) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{cartKey(itemID): 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DecrementCartItem removes one unit of itemID only while the stored
// quantity is positive.  The guard lives in the filter, so the check and
// the write are one atomic server-side operation.
func (s *Store) DecrementCartItem(ctx context.Context, userID string, itemID int) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	key := cartKey(itemID)
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, key: bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{key: -1}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CartByUserID returns the embedded cart of the user.
func (s *Store) CartByUserID(ctx context.Context, userID string) (model.Cart, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	var doc struct {
		CartData map[string]int `bson:"cartData"`
	}
	err = s.users.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"cartData": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return fromCartData(doc.CartData), nil
}
