package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/database"
)

// Backend is the live connection behind a Repositories value.
type Backend struct {
	Driver string
	// Mongo is set for DB_DRIVER=mongo.
	Mongo *mongo.Database
	// SQL is set for the gorm drivers.
	SQL *gorm.DB

	client *mongo.Client
}

// Ping checks the underlying connection. The memory backend is always up.
func (b *Backend) Ping(ctx context.Context) error {
	switch {
	case b.client != nil:
		return b.client.Ping(ctx, readpref.Primary())
	case b.SQL != nil:
		sqlDB, err := b.SQL.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return nil
}

func (b *Backend) Close(ctx context.Context) error {
	switch {
	case b.client != nil:
		return b.client.Disconnect(ctx)
	case b.SQL != nil:
		sqlDB, err := b.SQL.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Open connects to the store selected by DB_DRIVER.
func Open(ctx context.Context) (Repositories, *Backend, error) {
	driver := config.DatabaseDriver()

	switch driver {
	case "memory":
		return NewMemory(), &Backend{Driver: driver}, nil
	case "mongo":
		client, err := database.ConnectMongo(ctx, config.MongoURI())
		if err != nil {
			return Repositories{}, nil, err
		}
		db := client.Database(config.MongoDatabase())
		return NewMongo(db), &Backend{Driver: driver, Mongo: db, client: client}, nil
	default:
		db, err := database.OpenSQL(driver, config.DatabaseDSN())
		if err != nil {
			return Repositories{}, nil, err
		}
		return NewGorm(db), &Backend{Driver: driver, SQL: db}, nil
	}
}
