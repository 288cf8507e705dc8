package controllers_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Majorzinnn/botDC/controllers"
	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/routes"
	"github.com/Majorzinnn/botDC/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*models.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) FindActive(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) FindActiveByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Insert(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.Active {
		return repository.ErrNotFound
	}
	p.Active = false
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id string, qty int) error {
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

func (r *fakeProductRepo) ClampStockToZero(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok && p.Stock > 0 {
		p.Stock = 0
	}
	return nil
}

type fakeTxnRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Transaction
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{rows: make(map[string]*models.Transaction)}
}

func (r *fakeTxnRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *txn
	r.rows[txn.ID] = &cp
	return nil
}

func (r *fakeTxnRepo) FindByID(_ context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *fakeTxnRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.rows {
		if txn.SessionID == sessionID {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTxnRepo) UpdateStatus(_ context.Context, id, from, to, providerStatus string) error {
	if !models.CanTransition(from, to) {
		return repository.ErrStatusConflict
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.rows[id]
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

func (r *fakeTxnRepo) MarkDelivered(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.rows[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if txn.Delivered || txn.PaymentStatus != models.PaymentStatusPaid {
		return false, nil
	}
	txn.Delivered = true
	return true, nil
}

func (r *fakeTxnRepo) FindAll(_ context.Context, limit int64) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, txn := range r.rows {
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeProvider struct {
	mu          sync.Mutex
	createErr   error
	createCalls int
	statuses    []*services.CheckoutStatus
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, _ services.CheckoutSessionRequest) (*services.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	if p.createErr != nil {
		return nil, p.createErr
	}
	return &services.CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", p.createCalls),
		URL: "https://checkout.stripe.com/pay/cs_test",
	}, nil
}

func (p *fakeProvider) GetCheckoutStatus(_ context.Context, _ string) (*services.CheckoutStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.statuses) == 0 {
		return &services.CheckoutStatus{PaymentStatus: "unpaid", ProviderStatus: "open"}, nil
	}
	status := p.statuses[0]
	if len(p.statuses) > 1 {
		p.statuses = p.statuses[1:]
	}
	return status, nil
}

type nopPublisher struct{}

func (nopPublisher) SendPaymentEvent(models.PaymentEvent) error { return nil }

type fakeConvRepo struct {
	mu    sync.Mutex
	convs []models.Conversation
}

func (r *fakeConvRepo) Insert(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs = append(r.convs, *conv)
	return nil
}

func (r *fakeConvRepo) FindRecent(_ context.Context, limit int64) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Conversation, len(r.convs))
	copy(out, r.convs)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeBotConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*models.BotConfig
}

func newFakeBotConfigRepo() *fakeBotConfigRepo {
	return &fakeBotConfigRepo{configs: make(map[string]*models.BotConfig)}
}

func (r *fakeBotConfigRepo) FindByGuildID(_ context.Context, guildID string) (*models.BotConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (r *fakeBotConfigRepo) Upsert(_ context.Context, guildID string, updates bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		cfg = &models.BotConfig{
			ID:             guildID,
			GuildID:        guildID,
			WelcomeMessage: "Bem-vindo ao servidor!",
			AIEnabled:      true,
			ShopEnabled:    true,
			CreatedAt:      time.Now().UTC(),
		}
		r.configs[guildID] = cfg
	}
	for k, v := range updates {
		switch k {
		case "ai_channel_id":
			cfg.AIChannelID = v.(string)
		case "shop_channel_id":
			cfg.ShopChannelID = v.(string)
		case "welcome_message":
			cfg.WelcomeMessage = v.(string)
		case "ai_enabled":
			cfg.AIEnabled = v.(bool)
		case "shop_enabled":
			cfg.ShopEnabled = v.(bool)
		}
	}
	return nil
}

type idleRunner struct{}

func (idleRunner) Run(ctx context.Context) { <-ctx.Done() }

// --- router fixture ---

type testEnv struct {
	router   *gin.Engine
	products *fakeProductRepo
	txns     *fakeTxnRepo
	provider *fakeProvider
	convs    *fakeConvRepo
	configs  *fakeBotConfigRepo
	manager  *services.BotManager
}

func catalogProduct() *models.Product {
	return &models.Product{
		ID:        "p1",
		Name:      "Netflix Premium",
		Price:     25.00,
		Category:  "streaming",
		Stock:     5,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

func newTestEnv(t *testing.T, products ...*models.Product) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	env := &testEnv{
		products: newFakeProductRepo(products...),
		txns:     newFakeTxnRepo(),
		provider: &fakeProvider{},
		convs:    &fakeConvRepo{},
		configs:  newFakeBotConfigRepo(),
	}

	catalog := services.NewCatalogService(env.products, nil, logger)
	checkout := services.NewCheckoutService(env.products, env.txns, env.provider, nopPublisher{}, "brl", 50*time.Millisecond, logger)
	fulfillment := services.NewFulfillmentService(env.txns, catalog, nopPublisher{}, logger)
	reconciler := services.NewReconcilerService(env.txns, env.provider, fulfillment, nopPublisher{}, services.PollPolicy{
		MaxAttempts:     3,
		Interval:        time.Second,
		ProviderTimeout: 50 * time.Millisecond,
	}, logger)
	reconciler.Sleep = func(context.Context, time.Duration) error { return nil }

	env.manager = services.NewBotManager(idleRunner{}, logger)
	t.Cleanup(func() { env.manager.Stop() })

	env.router = gin.New()
	routes.Register(env.router,
		&controllers.PaymentController{
			Checkout:     checkout,
			Reconciler:   reconciler,
			Transactions: env.txns,
			Logger:       logger,
		},
		&controllers.ProductController{Catalog: catalog, Logger: logger},
		&controllers.ConversationController{Conversations: env.convs, Logger: logger},
		&controllers.BotController{Manager: env.manager, Configs: env.configs, Logger: logger},
	)
	return env
}
