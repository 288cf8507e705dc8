package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	Port        string
	Environment string

	MongoURI string
	DBName   string

	StripeSecretKey string
	Currency        string

	KafkaBrokers      string
	PaymentTopic      string // payment lifecycle events published to the bot
	ConversationTopic string // conversation log events consumed from the bot
	ConsumerGroupID   string

	RedisURL string

	// Reconciliation policy for in-flight checkout sessions.
	PollMaxAttempts int
	PollInterval    time.Duration
	ProviderTimeout time.Duration
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8001"),
		Environment:       getEnv("APP_ENV", "development"),
		MongoURI:          os.Getenv("MONGO_URL"),
		DBName:            getEnv("DB_NAME", "botdc"),
		StripeSecretKey:   os.Getenv("STRIPE_API_KEY"),
		Currency:          getEnv("CURRENCY", "brl"),
		KafkaBrokers:      getEnv("KAFKA_BROKERS", "localhost:9092"),
		PaymentTopic:      getEnv("PAYMENT_EVENTS_TOPIC", "payment-events"),
		ConversationTopic: getEnv("CONVERSATION_EVENTS_TOPIC", "bot-conversations"),
		ConsumerGroupID:   getEnv("CONSUMER_GROUP_ID", "storefront-service-group"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PollMaxAttempts:   getEnvInt("PAYMENT_POLL_MAX_ATTEMPTS", 5),
		PollInterval:      getEnvDuration("PAYMENT_POLL_INTERVAL", 2*time.Second),
		ProviderTimeout:   getEnvDuration("PAYMENT_PROVIDER_TIMEOUT", 10*time.Second),
	}

	if cfg.MongoURI == "" || cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}
	if cfg.PollMaxAttempts < 1 {
		return nil, fmt.Errorf("PAYMENT_POLL_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
