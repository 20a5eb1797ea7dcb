package portal

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashstore/internal/cart"
	"flashstore/internal/domain"
	"flashstore/internal/license"
	"flashstore/internal/notify"
	"flashstore/internal/script"
	"flashstore/internal/store"
)

type recordingNotifier struct {
	mu        sync.Mutex
	transfers []notify.TransferEvent
}

func (r *recordingNotifier) NotifyTransfer(_ context.Context, ev notify.TransferEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, ev)
}

func (r *recordingNotifier) NotifyCheckout(context.Context, notify.CheckoutEvent) {}

func (r *recordingNotifier) Transfers() []notify.TransferEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.TransferEvent, len(r.transfers))
	copy(out, r.transfers)
	return out
}

type portalFixture struct {
	manager  *Manager
	registry *license.Registry
	cart     *cart.Manager
	notifier *recordingNotifier
	store    *store.MemStore
}

func newFixture(t *testing.T) *portalFixture {
	t.Helper()
	mem := store.NewMemStore()
	logger := slog.Default()
	registry := license.NewRegistry(mem, nil, logger)
	cartManager := cart.NewManager(mem, logger)
	notifier := &recordingNotifier{}
	manager := NewManager(registry, cartManager, notifier, script.InstantPlayer{}, logger)
	return &portalFixture{
		manager:  manager,
		registry: registry,
		cart:     cartManager,
		notifier: notifier,
		store:    mem,
	}
}

// openAtLicense opens a session and waits for boot playback to finish.
func (f *portalFixture) openAtLicense(t *testing.T) *Session {
	t.Helper()
	s, err := f.manager.Open("1")
	require.NoError(t, err)
	select {
	case <-s.playDone:
	case <-time.After(time.Second):
		t.Fatal("boot playback did not finish")
	}
	require.Equal(t, StageLicense, s.Stage())
	return s
}

func (f *portalFixture) issueKey(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, f.registry.AppendVaultEntry(domain.VaultEntry{
		TransactionID: "ELON-TEST",
		LicenseKey:    key,
		Status:        domain.StatusCompleted,
		Timestamp:     "2026-01-01T00:00:00Z",
	}))
}

func waitForStage(t *testing.T, s *Session, want Stage) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Stage() == want
	}, time.Second, 5*time.Millisecond, "expected stage %s, got %s", want, s.Stage())
}

func TestOpen(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := f.manager.Open("999")
		assert.Error(t, err)
	})

	t.Run("boot log accumulates", func(t *testing.T) {
		s := f.openAtLicense(t)
		log := s.Log()
		require.NotEmpty(t, log)
		assert.Contains(t, log[0].Message, "Initializing")
	})
}

func TestSubmitLicense(t *testing.T) {
	t.Run("master key accepted", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("xtg654ghd"))
		assert.Equal(t, StageTypeSelect, s.Stage())
	})

	t.Run("invalid key stays in LICENSE", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		assert.ErrorIs(t, s.SubmitLicense("NOT-A-KEY"), ErrInvalidInput)
		assert.Equal(t, StageLicense, s.Stage())
		assert.Equal(t, MsgInvalidKey, s.LastError())
	})

	t.Run("burned key reports already used", func(t *testing.T) {
		f := newFixture(t)
		f.issueKey(t, "AB12CD34")
		f.registry.Burn("AB12CD34")
		s := f.openAtLicense(t)
		assert.ErrorIs(t, s.SubmitLicense("AB12CD34"), ErrInvalidInput)
		assert.Equal(t, MsgKeyAlreadyUsed, s.LastError())
	})

	t.Run("retry after rejection succeeds", func(t *testing.T) {
		f := newFixture(t)
		f.issueKey(t, "AB12CD34")
		s := f.openAtLicense(t)
		require.Error(t, s.SubmitLicense("WRONG"))
		require.NoError(t, s.SubmitLicense(" ab12cd34 "))
		assert.Equal(t, StageTypeSelect, s.Stage())
	})
}

func TestRequestPurchase(t *testing.T) {
	f := newFixture(t)
	s := f.openAtLicense(t)

	require.NoError(t, s.RequestPurchase())

	assert.True(t, s.PurchaseRequested())
	assert.Equal(t, StageComplete, s.Stage())
	require.Len(t, f.cart.Items(), 1)
	assert.Equal(t, "1", f.cart.Items()[0].Product.ID)

	t.Run("only available during LICENSE", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("XTG654GHD"))
		assert.ErrorIs(t, s.RequestPurchase(), ErrWrongStage)
	})
}

func TestStageProgression(t *testing.T) {
	t.Run("multi-network asset requires NETWORK_SELECT", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("XTG654GHD"))
		require.NoError(t, s.SelectType(domain.TransferStandard))
		require.NoError(t, s.SelectAsset("USDT"))
		assert.Equal(t, StageNetworkSelect, s.Stage())

		assert.ErrorIs(t, s.SelectNetwork("SOL"), ErrInvalidInput)
		require.NoError(t, s.SelectNetwork("TRC20"))
		assert.Equal(t, StageConfig, s.Stage())
	})

	t.Run("single-chain asset skips NETWORK_SELECT", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("XTG654GHD"))
		require.NoError(t, s.SelectType(domain.TransferStealth))
		require.NoError(t, s.SelectAsset("BTC"))
		assert.Equal(t, StageConfig, s.Stage())
	})

	t.Run("stages only move forward", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("XTG654GHD"))
		assert.ErrorIs(t, s.SubmitLicense("XTG654GHD"), ErrWrongStage)
		require.NoError(t, s.SelectType(domain.TransferBulk))
		assert.ErrorIs(t, s.SelectType(domain.TransferBulk), ErrWrongStage)
	})

	t.Run("unknown selections rejected", func(t *testing.T) {
		f := newFixture(t)
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("XTG654GHD"))
		assert.ErrorIs(t, s.SelectType("WARP"), ErrInvalidInput)
		require.NoError(t, s.SelectType(domain.TransferStandard))
		assert.ErrorIs(t, s.SelectAsset("DOGE"), ErrInvalidInput)
	})
}

func TestSubmitConfig(t *testing.T) {
	atConfig := func(t *testing.T, f *portalFixture, key string) *Session {
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense(key))
		require.NoError(t, s.SelectType(domain.TransferStandard))
		require.NoError(t, s.SelectAsset("USDT"))
		require.NoError(t, s.SelectNetwork("TRC20"))
		return s
	}

	t.Run("missing fields rejected", func(t *testing.T) {
		f := newFixture(t)
		s := atConfig(t, f, "XTG654GHD")
		assert.ErrorIs(t, s.SubmitConfig("", 0), ErrInvalidInput)
		assert.Equal(t, StageConfig, s.Stage())
	})

	t.Run("amount over product limit rejected", func(t *testing.T) {
		f := newFixture(t)
		s := atConfig(t, f, "XTG654GHD")
		err := s.SubmitConfig("TWallet123", 5000)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, s.LastError(), "TRANSFER LIMIT EXCEEDED")
		assert.Equal(t, StageConfig, s.Stage(), "rejection keeps the stage for retry")
	})

	t.Run("issued key is burned on execution", func(t *testing.T) {
		f := newFixture(t)
		f.issueKey(t, "AB12CD34")
		s := atConfig(t, f, "AB12CD34")

		require.NoError(t, s.SubmitConfig("TWallet123", 500))
		waitForStage(t, s, StageComplete)

		assert.False(t, f.registry.Validate("AB12CD34"))
		assert.True(t, f.registry.IsUsed("AB12CD34"))
	})

	t.Run("master key survives execution", func(t *testing.T) {
		f := newFixture(t)
		s := atConfig(t, f, "XTG654GHD")

		require.NoError(t, s.SubmitConfig("TWallet123", 500))
		waitForStage(t, s, StageComplete)

		assert.True(t, f.registry.Validate("XTG654GHD"))
	})

	t.Run("operator notification carries the flash details", func(t *testing.T) {
		f := newFixture(t)
		s := atConfig(t, f, "XTG654GHD")

		require.NoError(t, s.SubmitConfig("TWallet123", 750))
		waitForStage(t, s, StageComplete)

		require.Eventually(t, func() bool {
			return len(f.notifier.Transfers()) == 1
		}, time.Second, 5*time.Millisecond)

		ev := f.notifier.Transfers()[0]
		assert.Equal(t, "TWallet123", ev.Wallet)
		assert.InDelta(t, 750, ev.Amount, 0.001)
		assert.Equal(t, "USDT", ev.Asset)
		assert.Equal(t, "TRC20", ev.Network)
	})

	t.Run("execution log is append-only", func(t *testing.T) {
		f := newFixture(t)
		s := atConfig(t, f, "XTG654GHD")
		before := len(s.Log())

		require.NoError(t, s.SubmitConfig("TWallet123", 500))
		waitForStage(t, s, StageComplete)

		log := s.Log()
		assert.Greater(t, len(log), before)
		assert.Contains(t, log[len(log)-1].Message, "Flash complete")
	})
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	s := f.openAtLicense(t)
	id := s.ID

	f.manager.Close(id)

	_, ok := f.manager.Get(id)
	assert.False(t, ok)
	assert.ErrorIs(t, s.SubmitLicense("XTG654GHD"), ErrSessionDone)

	t.Run("burn survives close", func(t *testing.T) {
		f := newFixture(t)
		f.issueKey(t, "AB12CD34")
		s := f.openAtLicense(t)
		require.NoError(t, s.SubmitLicense("AB12CD34"))
		require.NoError(t, s.SelectType(domain.TransferStandard))
		require.NoError(t, s.SelectAsset("BTC"))
		require.NoError(t, s.SubmitConfig("bc1qwallet", 100))

		f.manager.Close(s.ID)

		assert.True(t, f.registry.IsUsed("AB12CD34"))
	})
}

func TestClose_MidBootStopsPlayback(t *testing.T) {
	mem := store.NewMemStore()
	logger := slog.Default()
	manager := NewManager(
		license.NewRegistry(mem, nil, logger),
		cart.NewManager(mem, logger),
		&recordingNotifier{},
		script.TimedPlayer{},
		logger)

	s, err := manager.Open("1")
	require.NoError(t, err)
	manager.Close(s.ID)

	select {
	case <-s.playDone:
	case <-time.After(time.Second):
		t.Fatal("boot playback did not stop after close")
	}
	assert.Equal(t, StageBoot, s.Stage(), "cancelled boot never advances")
}

func TestShutdown(t *testing.T) {
	f := newFixture(t)
	a := f.openAtLicense(t)
	b := f.openAtLicense(t)

	f.manager.Shutdown()

	_, okA := f.manager.Get(a.ID)
	_, okB := f.manager.Get(b.ID)
	assert.False(t, okA)
	assert.False(t, okB)
}
