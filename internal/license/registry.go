// Package license implements the license key lifecycle: validation of master
// and issued keys, the used-key blacklist, and one-time consumption ("burn")
// of issued keys. All durable state lives behind the injected store port.
package license

import (
	"log/slog"
	"strings"

	"flashstore/internal/domain"
	"flashstore/internal/metrics"
	"flashstore/internal/store"
)

// masterKeys are the fixed administrative keys. They always validate, never
// expire and never burn. Exposed only through the manifest export path.
var masterKeys = []string{
	"XTG654GHD",
	"TCX5FGHDSG",
	"DXYTES6GH0",
}

// ChangeBroadcaster receives a zero-payload signal after a burn so that any
// open vault view re-reads the persisted vault.
type ChangeBroadcaster interface {
	BroadcastVaultChanged()
}

// Registry decides whether a presented key grants access and enacts burns.
type Registry struct {
	store  store.Store
	hub    ChangeBroadcaster
	logger *slog.Logger
}

// NewRegistry creates a registry over the given store. hub may be nil when no
// cross-view synchronization is needed (tests, CLI tools).
func NewRegistry(s store.Store, hub ChangeBroadcaster, logger *slog.Logger) *Registry {
	return &Registry{
		store:  s,
		hub:    hub,
		logger: logger.With(slog.String("component", "license.registry")),
	}
}

// Normalize canonicalizes key input: surrounding whitespace stripped,
// uppercased. All membership checks operate on normalized keys.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// IsMaster reports whether key is one of the administrative master keys.
func IsMaster(key string) bool {
	k := Normalize(key)
	for _, m := range masterKeys {
		if k == m {
			return true
		}
	}
	return false
}

// MasterKeys returns the static administrative key list. Used only by the
// manifest export path, never shown to end users as their own keys.
func MasterKeys() []string {
	out := make([]string, len(masterKeys))
	copy(out, masterKeys)
	return out
}

// Validate reports whether key grants access. Empty input fails closed.
//
// The master-key check runs first and unconditionally bypasses the blacklist:
// master keys are reusable administrative access and are never burned, so the
// blacklist cannot apply to them. Issued keys validate only while present in
// the vault and absent from the used-key blacklist.
func (r *Registry) Validate(key string) bool {
	k := Normalize(key)
	if k == "" {
		return false
	}
	if IsMaster(k) {
		metrics.KeyValidations.WithLabelValues("master").Inc()
		return true
	}
	if r.IsUsed(k) {
		metrics.KeyValidations.WithLabelValues("used").Inc()
		return false
	}
	for _, entry := range r.VaultEntries() {
		if Normalize(entry.LicenseKey) == k {
			metrics.KeyValidations.WithLabelValues("issued").Inc()
			return true
		}
	}
	metrics.KeyValidations.WithLabelValues("invalid").Inc()
	return false
}

// IsUsed reports blacklist membership for the normalized key.
func (r *Registry) IsUsed(key string) bool {
	k := Normalize(key)
	if k == "" {
		return false
	}
	for _, used := range r.usedKeys() {
		if used == k {
			return true
		}
	}
	return false
}

// Burn permanently invalidates a presented key: the key is added to the
// blacklist (idempotently, even when it was never issued), every vault entry
// carrying it is removed, and the change signal fires once after both writes.
// Master keys are exempt. Re-burning an already-blacklisted key changes
// nothing and stays silent.
func (r *Registry) Burn(key string) {
	k := Normalize(key)
	if k == "" || IsMaster(k) {
		return
	}

	used := r.usedKeys()
	blacklisted := false
	for _, u := range used {
		if u == k {
			blacklisted = true
			break
		}
	}
	if !blacklisted {
		used = append(used, k)
		if err := store.WriteJSON(r.store, store.KeyUsedKeys, used); err != nil {
			r.logger.Error("failed to persist used-key blacklist",
				slog.String("error", err.Error()))
			return
		}
	}

	entries := r.VaultEntries()
	kept := entries[:0]
	removed := 0
	for _, entry := range entries {
		if Normalize(entry.LicenseKey) == k {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed > 0 {
		if err := store.WriteJSON(r.store, store.KeyVault, kept); err != nil {
			r.logger.Error("failed to persist vault after burn",
				slog.String("error", err.Error()))
			return
		}
	}

	if blacklisted && removed == 0 {
		return
	}

	r.logger.Info("license key burned",
		slog.Bool("newly_blacklisted", !blacklisted),
		slog.Int("vault_entries_removed", removed))
	metrics.KeysBurned.Inc()

	if r.hub != nil {
		r.hub.BroadcastVaultChanged()
	}
}

// VaultEntries returns the persisted vault, most-recent-first. Storage
// failures degrade to an empty vault.
func (r *Registry) VaultEntries() []domain.VaultEntry {
	var entries []domain.VaultEntry
	store.ReadJSON(r.store, r.logger, store.KeyVault, &entries)
	return entries
}

// AppendVaultEntry prepends a freshly issued transaction result to the vault.
func (r *Registry) AppendVaultEntry(entry domain.VaultEntry) error {
	entries := append([]domain.VaultEntry{entry}, r.VaultEntries()...)
	return store.WriteJSON(r.store, store.KeyVault, entries)
}

func (r *Registry) usedKeys() []string {
	var used []string
	store.ReadJSON(r.store, r.logger, store.KeyUsedKeys, &used)
	return used
}
