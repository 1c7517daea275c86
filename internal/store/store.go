package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoDocuments is returned by FindOne when the filter matches nothing.
var ErrNoDocuments = errors.New("store: no documents in result")

// Collection is the narrow slice of a document collection this
// service needs: equality-filter lookups, inserts, wholesale
// replacement, $set updates and single-document deletes.
type Collection interface {
	FindOne(ctx context.Context, filter bson.M, out any) error
	Find(ctx context.Context, filter bson.M) ([]bson.M, error)
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)
	ReplaceOne(ctx context.Context, filter bson.M, doc any) (matched int64, err error)
	UpdateOne(ctx context.Context, filter bson.M, update bson.M) (matched int64, err error)
	DeleteOne(ctx context.Context, filter bson.M) (deleted int64, err error)
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// Database hands out named collections.
type Database interface {
	Collection(name string) Collection
}

type Driver string

const (
	DriverMongo  Driver = "mongo"
	DriverMemory Driver = "memory"
)

// Open connects the configured backend. The returned close function must be
// called on shutdown. Both clients are constructed exactly once here, at
// startup, and shared for the life of the process.
func Open(ctx context.Context, driver Driver, uri, dbName string) (Database, func(context.Context) error, error) {
	switch driver {
	case DriverMongo:
		db, err := ConnectMongo(ctx, uri, dbName)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case DriverMemory:
		db := NewMemoryDatabase()
		return db, func(context.Context) error { return nil }, nil
	default:
		return nil, nil, errors.New("store: unsupported driver " + string(driver))
	}
}
