package services

import (
	"context"
	"errors"
	"time"

	"github.com/Majorzinnn/botDC/kafka"
	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"

	"go.uber.org/zap"
)

// StockKeeper is the slice of the catalog the fulfillment path mutates.
type StockKeeper interface {
	DecrementStock(ctx context.Context, id string, qty int) error
	ClampStockToZero(ctx context.Context, id string) error
}

// FulfillmentService hands a paid transaction over for delivery: it flips
// the delivered flag exactly once per transaction and decrements stock.
// Delivery itself is the bot's job; we publish the event it acts on.
type FulfillmentService struct {
	transactions repository.TransactionRepository
	stock        StockKeeper
	events       kafka.EventPublisher
	logger       *zap.Logger
}

func NewFulfillmentService(
	transactions repository.TransactionRepository,
	stock StockKeeper,
	events kafka.EventPublisher,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		transactions: transactions,
		stock:        stock,
		events:       events,
		logger:       logger,
	}
}

// Fulfill is idempotent: the delivered flag is the gate, flipped with a
// compare-and-set so concurrent observers of the same paid session
// produce at most one stock decrement and one delivery event.
func (s *FulfillmentService) Fulfill(ctx context.Context, txn *models.Transaction) error {
	won, err := s.transactions.MarkDelivered(ctx, txn.ID)
	if err != nil {
		return err
	}
	if !won {
		s.logger.Info("Skipping duplicate fulfillment",
			zap.String("transaction_id", txn.ID),
			zap.String("session_id", txn.SessionID),
		)
		return nil
	}

	if err := s.stock.DecrementStock(ctx, txn.ProductID, txn.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			// Raced with other purchases. The buyer already paid, so the
			// transaction stays delivered; the counter is clamped and the
			// anomaly surfaced for operator review.
			s.logger.Warn("Fulfillment stock conflict",
				zap.String("transaction_id", txn.ID),
				zap.String("product_id", txn.ProductID),
				zap.Int("quantity", txn.Quantity),
			)
			if cerr := s.stock.ClampStockToZero(ctx, txn.ProductID); cerr != nil {
				s.logger.Error("Failed to clamp stock", zap.String("product_id", txn.ProductID), zap.Error(cerr))
			}
			s.publish(models.EventFulfillmentConflict, txn)
		case errors.Is(err, repository.ErrNotFound):
			s.logger.Warn("Fulfilled transaction references missing product",
				zap.String("transaction_id", txn.ID),
				zap.String("product_id", txn.ProductID),
			)
		default:
			s.logger.Error("Failed to decrement stock",
				zap.String("transaction_id", txn.ID),
				zap.String("product_id", txn.ProductID),
				zap.Error(err),
			)
		}
	}

	s.publish(models.EventPaymentSucceeded, txn)

	s.logger.Info("Transaction fulfilled",
		zap.String("transaction_id", txn.ID),
		zap.String("session_id", txn.SessionID),
		zap.String("discord_user_id", txn.RequesterID),
	)
	return nil
}

func (s *FulfillmentService) publish(eventType string, txn *models.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.SendPaymentEvent(models.PaymentEvent{
		Type:          eventType,
		TransactionID: txn.ID,
		SessionID:     txn.SessionID,
		ProductID:     txn.ProductID,
		ProductName:   txn.ProductName,
		RequesterID:   txn.RequesterID,
		Quantity:      txn.Quantity,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Timestamp:     time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to publish fulfillment event",
			zap.String("event_type", eventType),
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
	}
}
