package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Majorzinnn/botDC/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BotConfigRepository stores per-guild bot settings.
type BotConfigRepository interface {
	FindByGuildID(ctx context.Context, guildID string) (*models.BotConfig, error)
	Upsert(ctx context.Context, guildID string, updates bson.M) error
}

type mongoBotConfigRepo struct {
	coll *mongo.Collection
}

func NewMongoBotConfigRepo(db *mongo.Database) BotConfigRepository {
	return &mongoBotConfigRepo{coll: db.Collection("bot_configs")}
}

func (r *mongoBotConfigRepo) FindByGuildID(ctx context.Context, guildID string) (*models.BotConfig, error) {
	var cfg models.BotConfig
	err := r.coll.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *mongoBotConfigRepo) Upsert(ctx context.Context, guildID string, updates bson.M) error {
	if updates == nil {
		updates = bson.M{}
	}
	defaults := bson.M{
		"id":              uuid.New().String(),
		"guild_id":        guildID,
		"welcome_message": "Bem-vindo ao servidor!",
		"ai_enabled":      true,
		"shop_enabled":    true,
		"created_at":      time.Now().UTC(),
	}
	// A path may not appear in both $set and $setOnInsert.
	for k := range updates {
		delete(defaults, k)
	}

	update := bson.M{"$setOnInsert": defaults}
	if len(updates) > 0 {
		update["$set"] = updates
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"guild_id": guildID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
