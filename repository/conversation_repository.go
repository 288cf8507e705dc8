package repository

import (
	"context"

	"github.com/Majorzinnn/botDC/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository stores the bot's conversation log.
type ConversationRepository interface {
	Insert(ctx context.Context, conv *models.Conversation) error
	FindRecent(ctx context.Context, limit int64) ([]models.Conversation, error)
}

type mongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo(db *mongo.Database) ConversationRepository {
	return &mongoConversationRepo{coll: db.Collection("conversations")}
}

func (r *mongoConversationRepo) Insert(ctx context.Context, conv *models.Conversation) error {
	_, err := r.coll.InsertOne(ctx, conv)
	return err
}

func (r *mongoConversationRepo) FindRecent(ctx context.Context, limit int64) ([]models.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
