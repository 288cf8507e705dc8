package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient initializes and returns a Redis client. The cache is an
// optional dependency: on connection failure we log and return nil so the
// catalog falls back to uncached reads.
func NewRedisClient(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid Redis URL, catalog cache disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Failed to connect to Redis, catalog cache disabled: %v", err)
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
