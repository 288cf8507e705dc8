package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	MongoClient *mongo.Client
	DB          *mongo.Database
)

// Connect establishes the MongoDB connection and pins the database handle.
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Println("❌ Failed to connect to MongoDB:", err)
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Println("❌ MongoDB ping failed:", err)
		return err
	}

	MongoClient = client
	DB = client.Database(dbName)
	return nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// session_id index is what enforces one ledger row per checkout session.
func EnsureIndexes(ctx context.Context) error {
	_, err := DB.Collection("payment_transactions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("payment_transactions indexes: %w", err)
	}

	_, err = DB.Collection("products").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("products index: %w", err)
	}

	_, err = DB.Collection("conversations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("conversations index: %w", err)
	}

	return nil
}

// Close disconnects from MongoDB.
func Close() error {
	if MongoClient == nil {
		return nil
	}
	if err := MongoClient.Disconnect(context.TODO()); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	log.Println("Disconnected from MongoDB")
	return nil
}
