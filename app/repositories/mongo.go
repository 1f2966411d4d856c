package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/medcart/app/models"
)

// Collection names.
const (
	UsersCollection         = "users"
	ProductsCollection      = "products"
	PurchasesCollection     = "purchases"
	PrescriptionsCollection = "prescriptions"
)

// NewMongo returns repositories backed by MongoDB collections in db.
func NewMongo(db *mongo.Database) Repositories {
	return Repositories{
		Users:         mongoUsers{db.Collection(UsersCollection)},
		Products:      mongoProducts{db.Collection(ProductsCollection)},
		Purchases:     mongoPurchases{db.Collection(PurchasesCollection)},
		Prescriptions: mongoPrescriptions{db.Collection(PrescriptionsCollection)},
	}
}

var newestFirstSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.D) (T, error) {
	var out T
	err := c.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("mongo %s: find: %w", c.Name(), err)
	}
	return out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.D, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("mongo %s: find: %w", c.Name(), err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo %s: decode: %w", c.Name(), err)
	}
	return out, nil
}

// updateOne applies update to the document matching filter and returns it.
// When nothing matches, missing distinguishes "no such id" from "filter did
// not hold".
func updateOne[T any](ctx context.Context, c *mongo.Collection, id string, filter, update bson.D, missing error) (T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("mongo %s: update: %w", c.Name(), err)
	}
	if missing == nil {
		return out, ErrNotFound
	}
	n, err := c.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return out, fmt.Errorf("mongo %s: count: %w", c.Name(), err)
	}
	if n == 0 {
		return out, ErrNotFound
	}
	return out, missing
}

func now() time.Time { return time.Now().UTC() }

// ─── Users ───────────────────────────────────────────────────────────────────

type mongoUsers struct{ c *mongo.Collection }

func (r mongoUsers) Create(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	touch(&u.CreatedAt, &u.UpdatedAt)
	_, err := r.c.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("mongo users: insert: %w", err)
	}
	return nil
}

func (r mongoUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	return findOne[models.User](ctx, r.c, bson.D{{Key: "_id", Value: id}})
}

func (r mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, r.c, bson.D{{Key: "email", Value: email}})
}

func (r mongoUsers) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.User](ctx, r.c, bson.D{{Key: "role", Value: role}}, opts)
}

func (r mongoUsers) PharmacyExists(ctx context.Context, ref string) (bool, error) {
	n, err := r.c.CountDocuments(ctx, bson.D{
		{Key: "role", Value: models.RolePharmacy},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: ref}},
			bson.D{{Key: "email", Value: strings.ToLower(ref)}},
		}},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo users: count: %w", err)
	}
	return n > 0, nil
}

// ─── Products ────────────────────────────────────────────────────────────────

type mongoProducts struct{ c *mongo.Collection }

func (r mongoProducts) List(ctx context.Context, pharmacy string) ([]models.Product, error) {
	filter := bson.D{}
	if pharmacy != "" {
		filter = bson.D{{Key: "pharmacy", Value: pharmacy}}
	}
	return findAll[models.Product](ctx, r.c, filter)
}

func (r mongoProducts) Create(ctx context.Context, p *models.Product) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if _, err := r.c.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("mongo products: insert: %w", err)
	}
	return nil
}

func (r mongoProducts) FindByID(ctx context.Context, id string) (models.Product, error) {
	return findOne[models.Product](ctx, r.c, bson.D{{Key: "_id", Value: id}})
}

func (r mongoProducts) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	set := bson.D{{Key: "updatedAt", Value: now()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	if patch.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *patch.Stock})
	}
	if patch.Pharmacy != nil {
		set = append(set, bson.E{Key: "pharmacy", Value: *patch.Pharmacy})
	}
	return updateOne[models.Product](ctx, r.c, id,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}}, nil)
}

func (r mongoProducts) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("mongo products: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r mongoProducts) DecrementStock(ctx context.Context, id string) (models.Product, error) {
	p, err := updateOne[models.Product](ctx, r.c, id,
		bson.D{{Key: "_id", Value: id}, {Key: "stock", Value: bson.D{{Key: "$gt", Value: 0}}}},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "stock", Value: -1}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now()}}},
		}, ErrOutOfStock)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// ─── Purchases ───────────────────────────────────────────────────────────────

type mongoPurchases struct{ c *mongo.Collection }

func (r mongoPurchases) Create(ctx context.Context, p *models.Purchase) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if p.Products == nil {
		p.Products = []models.PurchaseItem{}
	}
	if _, err := r.c.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("mongo purchases: insert: %w", err)
	}
	return nil
}

func (r mongoPurchases) FindByID(ctx context.Context, id string) (models.Purchase, error) {
	return findOne[models.Purchase](ctx, r.c, bson.D{{Key: "_id", Value: id}})
}

func (r mongoPurchases) ListByPharmacy(ctx context.Context, name string) ([]models.Purchase, error) {
	return findAll[models.Purchase](ctx, r.c, bson.D{{Key: "pharmacy", Value: name}},
		options.Find().SetSort(newestFirstSort))
}

func (r mongoPurchases) UpdateStatus(ctx context.Context, id string, next models.PurchaseStatus, from ...models.PurchaseStatus) (models.Purchase, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	var missing error
	if len(from) > 0 {
		filter = append(filter, bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: from}}})
		missing = ErrStatusChanged
	}
	return updateOne[models.Purchase](ctx, r.c, id, filter,
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: next},
			{Key: "updatedAt", Value: now()},
		}}}, missing)
}

func (r mongoPurchases) UpdateAddress(ctx context.Context, id string, addr models.Address) (models.Purchase, error) {
	return updateOne[models.Purchase](ctx, r.c, id,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "shippingAddress", Value: addr},
			{Key: "updatedAt", Value: now()},
		}}}, nil)
}

// ─── Prescriptions ───────────────────────────────────────────────────────────

type mongoPrescriptions struct{ c *mongo.Collection }

func (r mongoPrescriptions) Create(ctx context.Context, p *models.Prescription) error {
	ensureID(&p.ID)
	touch(&p.CreatedAt, &p.UpdatedAt)
	if _, err := r.c.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("mongo prescriptions: insert: %w", err)
	}
	return nil
}

func (r mongoPrescriptions) SearchByPharmacy(ctx context.Context, needle string) ([]models.Prescription, error) {
	filter := bson.D{{Key: "pharmacy", Value: primitive.Regex{Pattern: regexp.QuoteMeta(needle), Options: "i"}}}
	return findAll[models.Prescription](ctx, r.c, filter, options.Find().SetSort(newestFirstSort))
}
