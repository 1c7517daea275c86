package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDatabase wraps a connected mongo client scoped to one database.
type MongoDatabase struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials and pings the server so a bad URI fails at startup
// rather than on the first request.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoDatabase, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &MongoDatabase{client: client, db: client.Database(dbName)}, nil
}

func (d *MongoDatabase) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *MongoDatabase) Collection(name string) Collection {
	return &mongoCollection{col: d.db.Collection(name)}
}

type mongoCollection struct {
	col *mongo.Collection
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	err := c.col.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return err
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cur, err := c.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

func (c *mongoCollection) ReplaceOne(ctx context.Context, filter bson.M, doc any) (int64, error) {
	res, err := c.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	res, err := c.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return c.col.CountDocuments(ctx, filter)
}
