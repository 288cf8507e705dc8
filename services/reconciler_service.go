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

// PollPolicy bounds the caller-driven reconciliation loop: at most
// MaxAttempts provider reads, Interval apart, each capped by
// ProviderTimeout so a hung provider counts as a transient failure
// instead of stalling the attempt.
type PollPolicy struct {
	MaxAttempts     int
	Interval        time.Duration
	ProviderTimeout time.Duration
}

// ReconcilerService resolves in-flight checkout sessions into definitive
// ledger states. It never regresses a terminal row, and concurrent
// reconcilers for the same session converge through the ledger's
// compare-and-set updates plus idempotent fulfillment.
type ReconcilerService struct {
	transactions repository.TransactionRepository
	provider     CheckoutProvider
	fulfillment  *FulfillmentService
	events       kafka.EventPublisher
	policy       PollPolicy
	logger       *zap.Logger

	// Sleep is swappable so tests can run the poll loop without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewReconcilerService(
	transactions repository.TransactionRepository,
	provider CheckoutProvider,
	fulfillment *FulfillmentService,
	events kafka.EventPublisher,
	policy PollPolicy,
	logger *zap.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		transactions: transactions,
		provider:     provider,
		fulfillment:  fulfillment,
		events:       events,
		policy:       policy,
		logger:       logger,
		Sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetStatus performs a single reconcile pass for a session and returns
// the resulting snapshot. A terminal ledger row short-circuits without
// touching the provider.
func (s *ReconcilerService) GetStatus(ctx context.Context, sessionID string) (*models.StatusSnapshot, *ServiceError) {
	snap, err := s.reconcileOnce(ctx, sessionID)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		s.logger.Warn("Status check failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, errProviderUnavailable()
	}
	return snap, nil
}

// Poll drives reconciliation until the session reaches a terminal state
// or the attempt budget is spent. Transient provider errors are swallowed
// and counted against the budget. Exhaustion is not a failure: the row
// stays pending and the snapshot reports timed_out so the caller can say
// "verification timed out, check back later". A canceled caller context
// ends the loop early with the latest snapshot.
func (s *ReconcilerService) Poll(ctx context.Context, sessionID string) (*models.StatusSnapshot, *ServiceError) {
	// Resolve the ledger row up front so an unknown session is a hard 404
	// rather than a burned attempt budget.
	txn, err := s.transactions.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errTransactionNotFound()
		}
		return nil, errInternal("Erro ao verificar status")
	}

	last := &models.StatusSnapshot{
		PaymentStatus:  txn.PaymentStatus,
		ProviderStatus: txn.ProviderStatus,
		Delivered:      txn.Delivered,
	}

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		snap, err := s.reconcileOnce(ctx, sessionID)
		if err != nil {
			var svcErr *ServiceError
			if errors.As(err, &svcErr) {
				return nil, svcErr
			}
			// Transient: a flaky read must not abort an otherwise
			// successful flow. It still costs an attempt.
			s.logger.Warn("Poll attempt failed",
				zap.String("session_id", sessionID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		} else {
			last = snap
			if models.IsTerminalStatus(snap.PaymentStatus) {
				return snap, nil
			}
		}

		if attempt < s.policy.MaxAttempts {
			if err := s.Sleep(ctx, s.policy.Interval); err != nil {
				// Caller went away mid-wait. Report what we know; a later
				// poll resumes from the persisted pending row.
				s.logger.Info("Poll interrupted by caller",
					zap.String("session_id", sessionID),
					zap.Int("attempt", attempt),
				)
				return last, nil
			}
		}
	}

	last.TimedOut = true
	s.logger.Info("Poll budget exhausted, transaction stays pending",
		zap.String("session_id", sessionID),
		zap.Int("attempts", s.policy.MaxAttempts),
	)
	return last, nil
}

// reconcileOnce reads the provider once and applies the outcome to the
// ledger. Returned errors other than *ServiceError are transient.
func (s *ReconcilerService) reconcileOnce(ctx context.Context, sessionID string) (*models.StatusSnapshot, error) {
	txn, err := s.transactions.FindBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errTransactionNotFound()
		}
		return nil, err
	}

	if models.IsTerminalStatus(txn.PaymentStatus) {
		return snapshotOf(txn), nil
	}

	provCtx, cancel := context.WithTimeout(ctx, s.policy.ProviderTimeout)
	defer cancel()

	status, err := s.provider.GetCheckoutStatus(provCtx, sessionID)
	if err != nil {
		return nil, err
	}

	switch classify(status) {
	case models.PaymentStatusPaid:
		return s.applyPaid(ctx, txn, status)
	case models.PaymentStatusExpired:
		return s.applyTerminal(ctx, txn, models.PaymentStatusExpired, models.EventPaymentExpired, status)
	case models.PaymentStatusCanceled:
		return s.applyTerminal(ctx, txn, models.PaymentStatusCanceled, models.EventPaymentCanceled, status)
	default:
		// Not resolved yet; keep the provider's view current but leave
		// the payment status untouched.
		if err := s.transactions.UpdateStatus(ctx, txn.ID, txn.PaymentStatus, txn.PaymentStatus, status.ProviderStatus); err != nil && !errors.Is(err, repository.ErrStatusConflict) {
			return nil, err
		}
		txn.ProviderStatus = status.ProviderStatus
		return snapshotOf(txn), nil
	}
}

// applyPaid moves the row to paid and triggers fulfillment before the
// outcome is reported, so a success response always means the delivery
// hand-off happened.
func (s *ReconcilerService) applyPaid(ctx context.Context, txn *models.Transaction, status *CheckoutStatus) (*models.StatusSnapshot, error) {
	err := s.transactions.UpdateStatus(ctx, txn.ID, txn.PaymentStatus, models.PaymentStatusPaid, status.ProviderStatus)
	if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
		return nil, err
	}
	// On conflict another reconciler applied a terminal state first;
	// fulfillment below is idempotent either way.

	fresh, ferr := s.transactions.FindByID(ctx, txn.ID)
	if ferr != nil {
		return nil, ferr
	}

	if fresh.PaymentStatus == models.PaymentStatusPaid {
		if err := s.fulfillment.Fulfill(ctx, fresh); err != nil {
			return nil, err
		}
		fresh, ferr = s.transactions.FindByID(ctx, txn.ID)
		if ferr != nil {
			return nil, ferr
		}
	}

	return snapshotOf(fresh), nil
}

func (s *ReconcilerService) applyTerminal(ctx context.Context, txn *models.Transaction, to, eventType string, status *CheckoutStatus) (*models.StatusSnapshot, error) {
	err := s.transactions.UpdateStatus(ctx, txn.ID, txn.PaymentStatus, to, status.ProviderStatus)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			fresh, ferr := s.transactions.FindByID(ctx, txn.ID)
			if ferr != nil {
				return nil, ferr
			}
			return snapshotOf(fresh), nil
		}
		return nil, err
	}

	if s.events != nil {
		if perr := s.events.SendPaymentEvent(models.PaymentEvent{
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
		}); perr != nil {
			s.logger.Warn("Failed to publish payment event",
				zap.String("event_type", eventType),
				zap.String("session_id", txn.SessionID),
				zap.Error(perr),
			)
		}
	}

	s.logger.Info("Transaction reached terminal state",
		zap.String("session_id", txn.SessionID),
		zap.String("payment_status", to),
	)

	txn.PaymentStatus = to
	txn.ProviderStatus = status.ProviderStatus
	return snapshotOf(txn), nil
}

func classify(status *CheckoutStatus) string {
	switch {
	case status.PaymentStatus == "paid":
		return models.PaymentStatusPaid
	case status.ProviderStatus == "expired":
		return models.PaymentStatusExpired
	case status.ProviderStatus == "canceled":
		return models.PaymentStatusCanceled
	default:
		return models.PaymentStatusPending
	}
}

func snapshotOf(txn *models.Transaction) *models.StatusSnapshot {
	return &models.StatusSnapshot{
		PaymentStatus:  txn.PaymentStatus,
		ProviderStatus: txn.ProviderStatus,
		Delivered:      txn.Delivered,
	}
}
