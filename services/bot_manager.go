package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// BotRunner is the background worker the manager supervises.
type BotRunner interface {
	Run(ctx context.Context)
}

// BotManager controls the lifecycle of the bot worker goroutine. Start
// and Stop are idempotent: starting a running worker or stopping a
// stopped one just reports the current state.
type BotManager struct {
	runner BotRunner
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewBotManager(runner BotRunner, logger *zap.Logger) *BotManager {
	return &BotManager{runner: runner, logger: logger}
}

// Start launches the worker. Returns false when it was already running.
func (m *BotManager) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.running = true

	go func() {
		defer close(done)
		m.runner.Run(ctx)

		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.logger.Info("Bot worker started")
	return true
}

// Stop cancels the worker and waits for it to exit. Returns false when it
// was not running.
func (m *BotManager) Stop() bool {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return false
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.logger.Info("Bot worker stopped")
	return true
}

// Running reports whether the worker is currently consuming.
func (m *BotManager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
