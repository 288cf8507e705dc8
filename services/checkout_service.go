package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Majorzinnn/botDC/kafka"
	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService validates purchase requests and opens checkout sessions
// with the external payment provider. Exactly one pending ledger row is
// written per successful call; a provider failure persists nothing.
type CheckoutService struct {
	products        repository.ProductRepository
	transactions    repository.TransactionRepository
	provider        CheckoutProvider
	events          kafka.EventPublisher
	currency        string
	providerTimeout time.Duration
	logger          *zap.Logger
}

func NewCheckoutService(
	products repository.ProductRepository,
	transactions repository.TransactionRepository,
	provider CheckoutProvider,
	events kafka.EventPublisher,
	currency string,
	providerTimeout time.Duration,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		products:        products,
		transactions:    transactions,
		provider:        provider,
		events:          events,
		currency:        currency,
		providerTimeout: providerTimeout,
		logger:          logger,
	}
}

func (s *CheckoutService) InitiateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResponse, *ServiceError) {
	if strings.TrimSpace(req.RequesterID) == "" {
		return nil, errInvalidRequest("discord_user_id é obrigatório")
	}
	if strings.TrimSpace(req.OriginURL) == "" {
		return nil, errInvalidRequest("origin_url é obrigatório")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return nil, errInvalidRequest("quantity deve ser no mínimo 1")
	}

	product, err := s.products.FindActiveByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProductNotFound()
		}
		s.logger.Error("Failed to load product for checkout",
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		return nil, errInternal("Erro ao criar checkout")
	}

	if product.Stock < req.Quantity {
		return nil, errOutOfStock()
	}

	// Price is read once; a mid-flight catalog edit never changes the
	// amount of a session that is already on its way to the provider.
	amount := product.Price * float64(req.Quantity)

	origin := strings.TrimRight(req.OriginURL, "/")
	sessionReq := CheckoutSessionRequest{
		Amount:      amount,
		Currency:    s.currency,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		SuccessURL:  fmt.Sprintf("%s?session_id={CHECKOUT_SESSION_ID}&payment=success", origin),
		CancelURL:   fmt.Sprintf("%s?payment=cancelled", origin),
		Metadata: map[string]string{
			"product_id":      product.ID,
			"product_name":    product.Name,
			"discord_user_id": req.RequesterID,
			"quantity":        strconv.Itoa(req.Quantity),
			"bot_purchase":    "true",
		},
	}

	provCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	sess, err := s.provider.CreateCheckoutSession(provCtx, sessionReq)
	if err != nil {
		s.logger.Warn("Checkout session creation failed",
			zap.String("product_id", product.ID),
			zap.Error(err),
		)
		return nil, errProviderUnavailable()
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:             uuid.New().String(),
		SessionID:      sess.ID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		UnitPrice:      product.Price,
		Quantity:       req.Quantity,
		Amount:         amount,
		Currency:       s.currency,
		RequesterID:    req.RequesterID,
		PaymentStatus:  models.PaymentStatusPending,
		ProviderStatus: "open",
		Delivered:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.transactions.Create(ctx, txn); err != nil {
		s.logger.Error("Failed to persist transaction for checkout session",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil, errInternal("Erro ao registrar transação")
	}

	if s.events != nil {
		if err := s.events.SendPaymentEvent(models.PaymentEvent{
			Type:          models.EventCheckoutSessionCreated,
			TransactionID: txn.ID,
			SessionID:     txn.SessionID,
			ProductID:     txn.ProductID,
			ProductName:   txn.ProductName,
			RequesterID:   txn.RequesterID,
			Quantity:      txn.Quantity,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			Timestamp:     now,
		}); err != nil {
			s.logger.Warn("Failed to publish checkout event", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("transaction_id", txn.ID),
		zap.String("product_id", product.ID),
		zap.Float64("amount", amount),
	)

	return &models.CheckoutResponse{
		RedirectURL:   sess.URL,
		SessionID:     sess.ID,
		TransactionID: txn.ID,
	}, nil
}
