package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "audit_history"

// MongoRecorder stores entries in the audit_history collection.
type MongoRecorder struct {
	client  *mongo.Client
	entries *mongo.Collection
}

func NewMongoRecorder(ctx context.Context, uri, database string) (*MongoRecorder, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo history: MONGO_URI is empty")
	}
	if database == "" {
		database = "seo_auditor"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	r := &MongoRecorder{
		client:  client,
		entries: client.Database(database).Collection(mongoCollection),
	}

	_, err = r.entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "url", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't create history index: %w", err)
	}

	return r, nil
}

func (r *MongoRecorder) Record(ctx context.Context, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.entries.InsertOne(ctx, e)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongo history: record %s: %w", e.URL, err)
	}
	return nil
}

func (r *MongoRecorder) Recent(ctx context.Context, url string, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if url != "" {
		filter["url"] = url
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo history: find: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Entry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo history: decode: %w", err)
	}
	return out, nil
}

func (r *MongoRecorder) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
