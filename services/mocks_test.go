package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/services"
)

// --- In-memory product repository ---

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newMemProductRepo(products ...*models.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]*models.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *memProductRepo) FindActive(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindActiveByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) Insert(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.Active {
		return repository.ErrNotFound
	}
	p.Active = false
	return nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *memProductRepo) ClampStockToZero(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.Stock > 0 {
		p.Stock = 0
	}
	return nil
}

func (r *memProductRepo) stockOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return p.Stock
	}
	return -1
}

// --- In-memory transaction ledger ---

// memTxnRepo mirrors the Mongo ledger's compare-and-set semantics so the
// monotonicity and idempotency invariants are exercised for real.
type memTxnRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Transaction
	bySession map[string]*models.Transaction
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{
		byID:      make(map[string]*models.Transaction),
		bySession: make(map[string]*models.Transaction),
	}
}

func (r *memTxnRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySession[txn.SessionID]; exists {
		return fmt.Errorf("duplicate session_id %s", txn.SessionID)
	}
	cp := *txn
	r.byID[txn.ID] = &cp
	r.bySession[txn.SessionID] = &cp
	return nil
}

func (r *memTxnRepo) FindByID(_ context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *memTxnRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.bySession[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *memTxnRepo) UpdateStatus(_ context.Context, id, from, to, providerStatus string) error {
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", repository.ErrStatusConflict, from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if txn.PaymentStatus != from {
		return repository.ErrStatusConflict
	}
	txn.PaymentStatus = to
	txn.ProviderStatus = providerStatus
	return nil
}

func (r *memTxnRepo) MarkDelivered(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if txn.Delivered || txn.PaymentStatus != models.PaymentStatusPaid {
		return false, nil
	}
	txn.Delivered = true
	return true, nil
}

func (r *memTxnRepo) FindAll(_ context.Context, limit int64) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, txn := range r.byID {
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memTxnRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// --- Scripted checkout provider ---

type providerStep struct {
	status *services.CheckoutStatus
	err    error
}

type scriptedProvider struct {
	mu            sync.Mutex
	session       *services.CheckoutSession
	createErr     error
	createCalls   int
	lastCreateReq services.CheckoutSessionRequest

	script      []providerStep
	statusCalls int
}

func (p *scriptedProvider) CreateCheckoutSession(_ context.Context, req services.CheckoutSessionRequest) (*services.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	p.lastCreateReq = req
	if p.createErr != nil {
		return nil, p.createErr
	}
	if p.session != nil {
		return p.session, nil
	}
	return &services.CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", p.createCalls),
		URL: "https://checkout.stripe.com/pay/cs_test",
	}, nil
}

func (p *scriptedProvider) GetCheckoutStatus(_ context.Context, _ string) (*services.CheckoutStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	if len(p.script) == 0 {
		return nil, errors.New("no scripted status")
	}
	step := p.script[0]
	if len(p.script) > 1 {
		p.script = p.script[1:]
	}
	return step.status, step.err
}

func stillOpen() providerStep {
	return providerStep{status: &services.CheckoutStatus{PaymentStatus: "unpaid", ProviderStatus: "open"}}
}

func paid() providerStep {
	return providerStep{status: &services.CheckoutStatus{PaymentStatus: "paid", ProviderStatus: "complete"}}
}

func expired() providerStep {
	return providerStep{status: &services.CheckoutStatus{PaymentStatus: "unpaid", ProviderStatus: "expired"}}
}

func transientErr() providerStep {
	return providerStep{err: errors.New("connection reset")}
}

// --- Capturing event publisher ---

type capturePublisher struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func (p *capturePublisher) SendPaymentEvent(event models.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) typesSent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
