package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/aircargo/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BookingsCollection = "bookings"
	FlightsCollection  = "flights"
)

var (
	bookingIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "ref_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}}},
	}

	flightIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "flight_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "origin", Value: 1},
			{Key: "destination", Value: 1},
			{Key: "departure_date_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "destination", Value: 1}, {Key: "departure_date_time", Value: 1}}},
	}
)

// ConnectMongo dials the cluster and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureMongoIndexes creates the unique key indexes and the search indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(BookingsCollection).Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("ensure %s indexes: %w", BookingsCollection, err)
	}
	if _, err := db.Collection(FlightsCollection).Indexes().CreateMany(ctx, flightIndexes); err != nil {
		return fmt.Errorf("ensure %s indexes: %w", FlightsCollection, err)
	}
	return nil
}
