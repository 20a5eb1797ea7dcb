package portal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"flashstore/internal/cart"
	"flashstore/internal/domain"
	"flashstore/internal/license"
	"flashstore/internal/notify"
	"flashstore/internal/script"
)

// Manager tracks active portal sessions with dependency injection for the
// registry, cart, notifier and script player.
type Manager struct {
	registry *license.Registry
	cart     *cart.Manager
	notifier notify.Notifier
	player   script.Player
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a portal session manager.
func NewManager(r *license.Registry, c *cart.Manager, n notify.Notifier, p script.Player, logger *slog.Logger) *Manager {
	return &Manager{
		registry: r,
		cart:     c,
		notifier: n,
		player:   p,
		logger:   logger.With(slog.String("component", "portal.manager")),
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session for the product and begins boot playback.
func (m *Manager) Open(productID string) (*Session, error) {
	product, ok := domain.ProductByID(productID)
	if !ok {
		return nil, fmt.Errorf("unknown product %q", productID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         uuid.NewString(),
		Product:    product,
		registry:   m.registry,
		cart:       m.cart,
		notifier:   m.notifier,
		player:     m.player,
		validate:   validator.New(),
		logger:     m.logger,
		stage:      StageBoot,
		playCtx:    ctx,
		playCancel: cancel,
		playDone:   make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("portal session opened",
		slog.String("session_id", s.ID),
		slog.String("product", product.Name))
	s.start()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears down and forgets the session. Unknown ids are a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Shutdown closes all sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
