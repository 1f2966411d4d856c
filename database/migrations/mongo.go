package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/medcart/app/repositories"
)

// mongoIndexes is keyed by collection name.
var mongoIndexes = map[string][]mongo.IndexModel{
	repositories.UsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("role")},
	},
	repositories.ProductsCollection: {
		{Keys: bson.D{{Key: "pharmacy", Value: 1}}, Options: options.Index().SetName("pharmacy")},
	},
	repositories.PurchasesCollection: {
		{Keys: bson.D{{Key: "pharmacy", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("pharmacy_created")},
	},
	repositories.PrescriptionsCollection: {
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created")},
	},
}

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// email index is what turns a concurrent duplicate registration into
// ErrDuplicate. Creating an existing index is a no-op.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range mongoIndexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("migrations: %s indexes: %w", coll, err)
		}
	}
	return nil
}
