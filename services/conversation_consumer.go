package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConversationConsumer persists the conversation events the chat bot
// publishes, so the dashboard can inspect recent exchanges. It is the
// worker the bot lifecycle endpoints start and stop.
type ConversationConsumer struct {
	brokers []string
	topic   string
	groupID string
	repo    repository.ConversationRepository
	logger  *zap.Logger
}

func NewConversationConsumer(brokers []string, topic, groupID string, repo repository.ConversationRepository, logger *zap.Logger) *ConversationConsumer {
	return &ConversationConsumer{
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
		repo:    repo,
		logger:  logger,
	}
}

// Run consumes until ctx is canceled. The reader is created per run so a
// stopped worker can be started again.
func (c *ConversationConsumer) Run(ctx context.Context) {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  c.brokers,
		Topic:    c.topic,
		GroupID:  c.groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	c.logger.Info("Conversation consumer started",
		zap.String("topic", c.topic),
		zap.String("group_id", c.groupID),
	)

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Conversation consumer stopped")
				return
			}
			c.logger.Warn("Error reading conversation event", zap.Error(err))
			continue
		}

		c.HandleMessage(ctx, m.Value)
	}
}

// HandleMessage validates one raw event and persists it. Malformed
// payloads are logged and dropped; the consumer never stops over a bad
// message.
func (c *ConversationConsumer) HandleMessage(ctx context.Context, payload []byte) {
	var event models.ConversationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Warn("Invalid conversation event JSON",
			zap.Error(err),
			zap.String("payload", string(payload)),
		)
		return
	}
	if event.UserID == "" || event.Message == "" {
		c.logger.Warn("Conversation event missing required fields",
			zap.String("payload", string(payload)),
		)
		return
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	conv := &models.Conversation{
		ID:        uuid.New().String(),
		UserID:    event.UserID,
		ChannelID: event.ChannelID,
		Message:   event.Message,
		Reply:     event.Reply,
		SessionID: event.SessionID,
		Timestamp: ts,
	}

	if err := c.repo.Insert(ctx, conv); err != nil {
		c.logger.Error("Failed to store conversation",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
