package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fathima-sithara/jungbot/internal/config"
	"github.com/fathima-sithara/jungbot/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func NewMongoClient(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MessageRepository persists counted group messages. Documents expire
// through a TTL index on created_at.
type MessageRepository struct {
	coll *mongo.Collection
}

func indexModels(retention time.Duration) []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("chat_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_ttl_idx").SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	}
}

func NewMessageRepository(ctx context.Context, coll *mongo.Collection, retention time.Duration) (*MessageRepository, error) {
	if _, err := coll.Indexes().CreateMany(ctx, indexModels(retention)); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return &MessageRepository{coll: coll}, nil
}

// SaveMessage inserts m once; a redelivered update hits the same _id and
// leaves the stored row alone. inserted is false for such a redelivery.
func (r *MessageRepository) SaveMessage(ctx context.Context, m *domain.StoredMessage) (inserted bool, err error) {
	filter := bson.M{"_id": m.ID}
	update := bson.M{"$setOnInsert": m}
	opts := options.Update().SetUpsert(true)
	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("save message %s: %w", m.ID, err)
	}
	return res.UpsertedCount > 0, nil
}

func sinceQuery(from time.Time) (bson.M, *options.FindOptions) {
	filter := bson.M{"created_at": bson.M{"$gte": from}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetBatchSize(1000)
	return filter, opts
}

// StreamSince calls fn for every message created at or after from, oldest
// first. It stops at the first error fn returns.
func (r *MessageRepository) StreamSince(ctx context.Context, from time.Time, fn func(*domain.StoredMessage) error) (int, error) {
	filter, opts := sinceQuery(from)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	n := 0
	for cur.Next(ctx) {
		var m domain.StoredMessage
		if err := cur.Decode(&m); err != nil {
			return n, err
		}
		if err := fn(&m); err != nil {
			return n, err
		}
		n++
	}
	return n, cur.Err()
}
