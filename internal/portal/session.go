// Package portal implements the software portal wizard: a forward-only
// sequence of stages gating access to the simulated transfer action. Each
// stage appends to a session log that is never truncated or rewritten, giving
// an audit trail of the session.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"flashstore/internal/cart"
	"flashstore/internal/domain"
	"flashstore/internal/license"
	"flashstore/internal/metrics"
	"flashstore/internal/notify"
	"flashstore/internal/script"
)

// Stage identifies the portal wizard stage. Stages only move forward.
type Stage string

const (
	StageBoot          Stage = "BOOT"
	StageLicense       Stage = "LICENSE"
	StageTypeSelect    Stage = "TYPE_SELECT"
	StageCoinSelect    Stage = "COIN_SELECT"
	StageNetworkSelect Stage = "NETWORK_SELECT"
	StageConfig        Stage = "CONFIG"
	StageExecuting     Stage = "EXECUTING"
	StageComplete      Stage = "COMPLETE"
)

// User-facing license rejection messages.
const (
	MsgKeyAlreadyUsed = "KEY ALREADY USED"
	MsgInvalidKey     = "INVALID KEY"
)

// Flow errors surfaced to the transport layer.
var (
	ErrWrongStage   = errors.New("action not allowed in current stage")
	ErrSessionDone  = errors.New("session is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// LogLine is one entry in the session's append-only log.
type LogLine struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// flashConfig is the CONFIG stage submission.
type flashConfig struct {
	Wallet string  `validate:"required"`
	Amount float64 `validate:"required,gt=0"`
}

// Session is one portal run against a single product.
type Session struct {
	ID      string
	Product domain.Product

	registry *license.Registry
	cart     *cart.Manager
	notifier notify.Notifier
	player   script.Player
	validate *validator.Validate
	logger   *slog.Logger

	mu           sync.RWMutex
	stage        Stage
	log          []LogLine
	licenseKey   string
	transferType domain.TransferType
	asset        domain.Asset
	network      string
	lastErr      string
	purchase     bool
	closed       bool

	playCtx    context.Context
	playCancel context.CancelFunc
	playDone   chan struct{}
}

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Log returns a copy of the append-only session log.
func (s *Session) Log() []LogLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LogLine, len(s.log))
	copy(out, s.log)
	return out
}

// LastError returns the most recent inline validation message.
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// PurchaseRequested reports whether the user abandoned license entry and
// asked to buy the product instead.
func (s *Session) PurchaseRequested() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchase
}

func (s *Session) appendLog(msg string) {
	s.mu.Lock()
	s.log = append(s.log, LogLine{Time: time.Now(), Message: msg})
	s.mu.Unlock()
}

// start plays the boot script and advances to LICENSE when it is exhausted.
func (s *Session) start() {
	go func() {
		defer close(s.playDone)
		boot := script.Boot(s.Product.Name, s.Product.Version)
		if err := s.player.Play(s.playCtx, boot, s.appendLog); err != nil {
			return
		}
		s.mu.Lock()
		if !s.closed && s.stage == StageBoot {
			s.stage = StageLicense
		}
		s.mu.Unlock()
	}()
}

// SubmitLicense validates the presented key. Blacklisted keys get a specific
// rejection, anything else invalid gets a generic one; both are logged and
// the session stays in LICENSE. A valid key advances to TYPE_SELECT.
func (s *Session) SubmitLicense(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionDone
	}
	if s.stage != StageLicense {
		return ErrWrongStage
	}

	k := license.Normalize(key)
	if s.registry.Validate(k) {
		s.licenseKey = k
		s.stage = StageTypeSelect
		s.lastErr = ""
		s.log = append(s.log, LogLine{Time: time.Now(), Message: "License signature accepted. Access granted."})
		return nil
	}

	if s.registry.IsUsed(k) {
		s.lastErr = MsgKeyAlreadyUsed
	} else {
		s.lastErr = MsgInvalidKey
	}
	s.log = append(s.log, LogLine{Time: time.Now(), Message: "License rejected: " + s.lastErr})
	return fmt.Errorf("%w: %s", ErrInvalidInput, s.lastErr)
}

// RequestPurchase abandons license entry: the current product is added to the
// cart and the session terminates with the purchase flag set.
func (s *Session) RequestPurchase() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionDone
	}
	if s.stage != StageLicense {
		s.mu.Unlock()
		return ErrWrongStage
	}
	s.purchase = true
	s.stage = StageComplete
	s.log = append(s.log, LogLine{Time: time.Now(), Message: "Purchase flow requested. Routing to manifest."})
	s.mu.Unlock()

	if _, err := s.cart.Add(s.Product); err != nil {
		return err
	}
	return nil
}

// SelectType records the transfer type and advances to COIN_SELECT.
func (s *Session) SelectType(t domain.TransferType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionDone
	}
	if s.stage != StageTypeSelect {
		return ErrWrongStage
	}
	if !t.Valid() {
		return fmt.Errorf("%w: unknown transfer type %q", ErrInvalidInput, t)
	}
	s.transferType = t
	s.stage = StageCoinSelect
	s.log = append(s.log, LogLine{Time: time.Now(), Message: fmt.Sprintf("Transfer type selected: %s", t)})
	return nil
}

// SelectAsset records the asset choice. NETWORK_SELECT is skipped when the
// asset needs no chain disambiguation.
func (s *Session) SelectAsset(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionDone
	}
	if s.stage != StageCoinSelect {
		return ErrWrongStage
	}
	asset, ok := domain.AssetBySymbol(symbol)
	if !ok {
		return fmt.Errorf("%w: unknown asset %q", ErrInvalidInput, symbol)
	}
	s.asset = asset
	s.log = append(s.log, LogLine{Time: time.Now(), Message: fmt.Sprintf("Asset selected: %s (%s)", asset.Symbol, asset.Name)})
	if asset.RequiresNetwork() {
		s.stage = StageNetworkSelect
	} else {
		s.stage = StageConfig
	}
	return nil
}

// SelectNetwork records the chain choice and advances to CONFIG.
func (s *Session) SelectNetwork(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionDone
	}
	if s.stage != StageNetworkSelect {
		return ErrWrongStage
	}
	if !s.asset.HasNetwork(name) {
		return fmt.Errorf("%w: %s is not available on %q", ErrInvalidInput, s.asset.Symbol, name)
	}
	s.network = name
	s.stage = StageConfig
	s.log = append(s.log, LogLine{Time: time.Now(), Message: fmt.Sprintf("Network selected: %s", name)})
	return nil
}

// SubmitConfig validates the destination and amount, burns the license, fires
// the operator notification, and starts the execution playback. The burn and
// the notification are not rolled back if the session closes mid-playback.
func (s *Session) SubmitConfig(wallet string, amount float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionDone
	}
	if s.stage != StageConfig {
		s.mu.Unlock()
		return ErrWrongStage
	}

	cfg := flashConfig{Wallet: wallet, Amount: amount}
	if err := s.validate.Struct(cfg); err != nil {
		s.lastErr = "REQUIRED FIELDS MISSING"
		s.log = append(s.log, LogLine{Time: time.Now(), Message: "Config rejected: " + s.lastErr})
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidInput, s.lastErr)
	}
	if s.Product.MaxAmount > 0 && amount > s.Product.MaxAmount {
		s.lastErr = fmt.Sprintf("TRANSFER LIMIT EXCEEDED: max %.0f %s for %s",
			s.Product.MaxAmount, s.asset.Symbol, s.Product.Name)
		s.log = append(s.log, LogLine{Time: time.Now(), Message: "Config rejected: " + s.lastErr})
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidInput, s.lastErr)
	}

	key := s.licenseKey
	asset := s.asset
	network := s.network
	product := s.Product
	s.lastErr = ""
	s.stage = StageExecuting
	s.log = append(s.log, LogLine{Time: time.Now(), Message: "Flash parameters locked. Initiating quantum flash."})
	ctx := s.playCtx
	s.mu.Unlock()

	s.registry.Burn(key)
	metrics.PortalFlashes.Inc()

	// Best effort, must complete even if the session is torn down, so the
	// notifier gets a context detached from the playback lifecycle.
	go s.notifier.NotifyTransfer(context.WithoutCancel(ctx), notify.TransferEvent{
		Product:    product.Name,
		Wallet:     wallet,
		Amount:     amount,
		Asset:      asset.Symbol,
		Network:    network,
		LicenseKey: key,
		Time:       time.Now().UTC().Format(time.RFC3339),
	})

	go func() {
		exec := script.Execution(wallet, amount, asset.Symbol)
		if err := s.player.Play(ctx, exec, s.appendLog); err != nil {
			return
		}
		s.mu.Lock()
		if !s.closed && s.stage == StageExecuting {
			s.stage = StageComplete
			s.log = append(s.log, LogLine{Time: time.Now(), Message: "Flash complete. Liquidity tunneled to target node."})
		}
		s.mu.Unlock()
	}()
	return nil
}

// Close tears down the session, cancelling any in-flight playback. Burns and
// notifications already issued are preserved.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.playCancel()
	s.logger.Debug("portal session closed", slog.String("session_id", s.ID))
}
