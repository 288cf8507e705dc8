package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Majorzinnn/botDC/config"
	"github.com/Majorzinnn/botDC/controllers"
	"github.com/Majorzinnn/botDC/database"
	"github.com/Majorzinnn/botDC/kafka"
	"github.com/Majorzinnn/botDC/logger"
	"github.com/Majorzinnn/botDC/middleware"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/routes"
	"github.com/Majorzinnn/botDC/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[Storefront] ❌ Failed to load config:", err)
	}

	logger.Initialize(cfg.Environment)
	defer zap.L().Sync()

	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatal("[Storefront] ❌ Failed to connect to DB:", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		zap.L().Warn("Failed to ensure indexes", zap.Error(err))
	}
	cancel()

	redisClient := database.NewRedisClient(cfg.RedisURL)

	productRepo := repository.NewMongoProductRepo(database.DB)
	txnRepo := repository.NewMongoTransactionRepo(database.DB)
	convRepo := repository.NewMongoConversationRepo(database.DB)
	botConfigRepo := repository.NewMongoBotConfigRepo(database.DB)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	producer := kafka.NewPaymentEventProducer(brokers, cfg.PaymentTopic)
	defer producer.Close()

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey)

	catalog := services.NewCatalogService(productRepo, redisClient, zap.L())
	checkout := services.NewCheckoutService(
		productRepo, txnRepo, stripeSvc, producer,
		cfg.Currency, cfg.ProviderTimeout, zap.L(),
	)
	fulfillment := services.NewFulfillmentService(txnRepo, catalog, producer, zap.L())
	reconciler := services.NewReconcilerService(
		txnRepo, stripeSvc, fulfillment, producer,
		services.PollPolicy{
			MaxAttempts:     cfg.PollMaxAttempts,
			Interval:        cfg.PollInterval,
			ProviderTimeout: cfg.ProviderTimeout,
		},
		zap.L(),
	)

	consumer := services.NewConversationConsumer(brokers, cfg.ConversationTopic, cfg.ConsumerGroupID, convRepo, zap.L())
	botManager := services.NewBotManager(consumer, zap.L())
	botManager.Start()
	defer botManager.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.CORSMiddleware())

	routes.Register(r,
		&controllers.PaymentController{
			Checkout:     checkout,
			Reconciler:   reconciler,
			Transactions: txnRepo,
			Logger:       zap.L(),
		},
		&controllers.ProductController{Catalog: catalog, Logger: zap.L()},
		&controllers.ConversationController{Conversations: convRepo, Logger: zap.L()},
		&controllers.BotController{Manager: botManager, Configs: botConfigRepo, Logger: zap.L()},
	)

	zap.L().Info("Storefront service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[Storefront] ❌ Server failed:", err)
	}
}
