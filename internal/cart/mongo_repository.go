package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) Get(ctx context.Context, email string) (*Cart, error) {
	var cart Cart

	filter := bson.M{"email": email}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// Save does a versioned whole-document write: the filter matches the version
// the caller read, so two concurrent writers cannot overwrite each other's
// effect. Version 0 means the cart has never been persisted and is inserted.
func (m *MongoRepository) Save(ctx context.Context, cart *Cart) error {
	now := time.Now()
	cart.UpdatedAt = now

	if cart.Version == 0 {
		if cart.CreatedAt.IsZero() {
			cart.CreatedAt = now
		}
		cart.Version = 1
		_, err := m.collection.InsertOne(ctx, cart)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				cart.Version = 0
				return ErrVersionConflict
			}
			cart.Version = 0
			return fmt.Errorf("failed to insert cart: %w", err)
		}
		return nil
	}

	filter := bson.M{"email": cart.Email, "version": cart.Version}
	update := bson.M{
		"$set": bson.M{
			"items":       cart.Items,
			"total_price": cart.TotalPrice,
			"updated_at":  now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}

	cart.Version++
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
