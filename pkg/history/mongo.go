package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/nodedocs/pkg/cache"
)

// Collection is the MongoDB collection holding run records.
const Collection = "runs"

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to uri (mongodb:// or mongodb+srv://), pings the
// server and ensures the index used by List. Ping failures are retried with
// backoff.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := NewMongoStoreFromClient(client, database)
	_, err = s.runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "finished", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create history index: %w", err)
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, runs: client.Database(database).Collection(Collection)}
}

// Add upserts the record by ID.
func (s *MongoStore) Add(ctx context.Context, r Record) error {
	_, err := s.runs.ReplaceOne(ctx, bson.D{{Key: "_id", Value: r.ID}}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store run %s: %w", r.ID, err)
	}
	return nil
}

// List returns the most recently finished runs.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "finished", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.runs.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
