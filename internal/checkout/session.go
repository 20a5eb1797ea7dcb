// Package checkout drives the cart through the scripted purchase flow:
// IDLE -> FORM -> PROCESSING -> RESULT. The processing sequence is playback
// of a fixed script; the only real work is the call to the issuance
// collaborator at the end.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"flashstore/internal/cart"
	"flashstore/internal/domain"
	"flashstore/internal/license"
	"flashstore/internal/metrics"
	"flashstore/internal/notify"
	"flashstore/internal/script"
)

// State identifies where a checkout session is in its flow.
type State string

const (
	StateIdle       State = "IDLE"
	StateForm       State = "FORM"
	StateProcessing State = "PROCESSING"
	StateResult     State = "RESULT"
)

// Flow errors surfaced to the transport layer.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrWrongState    = errors.New("operation not allowed in current state")
	ErrAbortBlocked  = errors.New("checkout cannot be aborted while processing")
	ErrMissingFields = errors.New("name, email and phone are required")
)

// Contact holds the purchaser details collected on the checkout form.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// Session is one checkout flow over the shared cart. Sessions are
// single-user; the mutex only guards against a concurrent status poll during
// processing.
type Session struct {
	cart     *cart.Manager
	registry *license.Registry
	issuer   Issuer
	player   script.Player
	notifier notify.Notifier
	validate *validator.Validate
	logger   *slog.Logger

	mu      sync.RWMutex
	state   State
	method  domain.PaymentMethod
	contact Contact
	hasForm bool
	step    string
	result  *domain.VaultEntry
	lastErr string
}

// NewSession creates an idle checkout session.
func NewSession(c *cart.Manager, r *license.Registry, issuer Issuer, player script.Player, notifier notify.Notifier, logger *slog.Logger) *Session {
	return &Session{
		cart:     c,
		registry: r,
		issuer:   issuer,
		player:   player,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "checkout.session")),
		state:    StateIdle,
		method:   domain.PaymentUSDT,
	}
}

// State returns the current flow state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentStep returns the processing status line currently displayed.
func (s *Session) CurrentStep() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Result returns the transaction result once the session reaches RESULT.
func (s *Session) Result() *domain.VaultEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// LastError returns the most recent transient user-facing error message.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Begin opens the checkout form. The cart must be non-empty.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrWrongState
	}
	if len(s.cart.Items()) == 0 {
		return ErrEmptyCart
	}
	s.state = StateForm
	s.lastErr = ""
	return nil
}

// SelectMethod records the chosen bridge network while on the form.
func (s *Session) SelectMethod(m domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateForm {
		return ErrWrongState
	}
	if !m.Valid() {
		return fmt.Errorf("unknown payment method %q", m)
	}
	s.method = m
	return nil
}

// SubmitContact validates and records the purchaser details. The session
// stays in FORM either way; processing is gated on a valid submission.
func (s *Session) SubmitContact(c Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateForm {
		return ErrWrongState
	}
	if err := s.validate.Struct(c); err != nil {
		s.lastErr = ErrMissingFields.Error()
		return ErrMissingFields
	}
	s.contact = c
	s.hasForm = true
	s.lastErr = ""
	return nil
}

// Abort closes the checkout view. Closing while PROCESSING is disallowed; the
// sequence must complete naturally. Closing from RESULT clears the displayed
// result and returns the session to IDLE so the next purchase can begin.
func (s *Session) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateProcessing {
		return ErrAbortBlocked
	}
	s.state = StateIdle
	s.result = nil
	s.contact = Contact{}
	s.hasForm = false
	s.step = ""
	s.lastErr = ""
	return nil
}

// Process plays the scripted sequence and invokes the issuance collaborator.
// On success the result is prepended to the vault and the cart cleared; on
// failure the cart is untouched and the session returns to FORM for retry.
func (s *Session) Process(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateForm {
		s.mu.Unlock()
		return ErrWrongState
	}
	if !s.hasForm {
		s.mu.Unlock()
		return ErrMissingFields
	}
	items := s.cart.Items()
	if len(items) == 0 {
		s.mu.Unlock()
		return ErrEmptyCart
	}
	s.state = StateProcessing
	s.lastErr = ""
	s.mu.Unlock()

	if err := s.player.Play(ctx, script.Checkout(), func(msg string) {
		s.mu.Lock()
		s.step = msg
		s.mu.Unlock()
	}); err != nil {
		// Teardown mid-sequence. No side effects have happened yet.
		s.mu.Lock()
		s.state = StateForm
		s.step = ""
		s.mu.Unlock()
		return err
	}

	entry, err := s.issuer.Issue(ctx, items)
	if err != nil {
		s.logger.Warn("key issuance failed",
			slog.String("error", err.Error()))
		metrics.CheckoutsFailed.Inc()
		s.mu.Lock()
		s.state = StateForm
		s.step = ""
		s.lastErr = "Quantum breach detected. Retry protocol."
		s.mu.Unlock()
		return err
	}

	if err := s.registry.AppendVaultEntry(entry); err != nil {
		s.logger.Error("failed to persist vault entry",
			slog.String("error", err.Error()))
		metrics.CheckoutsFailed.Inc()
		s.mu.Lock()
		s.state = StateForm
		s.step = ""
		s.lastErr = "Quantum breach detected. Retry protocol."
		s.mu.Unlock()
		return err
	}
	if err := s.cart.Clear(); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			slog.String("error", err.Error()))
	}

	s.logger.Info("checkout completed",
		slog.String("transaction_id", entry.TransactionID),
		slog.String("payment_method", string(s.Method())))
	metrics.CheckoutsCompleted.Inc()

	// Best effort; detached from the request lifecycle.
	var total float64
	var count int
	for _, item := range items {
		total += item.Subtotal()
		count += item.Quantity
	}
	go s.notifier.NotifyCheckout(context.WithoutCancel(ctx), notify.CheckoutEvent{
		TransactionID: entry.TransactionID,
		Total:         total,
		ItemCount:     count,
		Method:        string(s.Method()),
		Time:          entry.Timestamp,
	})

	s.mu.Lock()
	s.result = &entry
	s.state = StateResult
	s.step = ""
	s.mu.Unlock()
	return nil
}

// Method returns the selected bridge network.
func (s *Session) Method() domain.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}
