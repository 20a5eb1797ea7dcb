// Package store provides the persisted key/value storage port shared by the
// cart, vault and used-key blacklist. Implementations must tolerate missing
// keys and corrupted payloads: readers degrade to an empty default rather than
// failing, so a damaged data file can never take the application down.
package store

import (
	"encoding/json"
	"log/slog"
)

// Well-known storage keys.
const (
	KeyCart     = "cart"
	KeyVault    = "vault"
	KeyUsedKeys = "used_keys"
)

// Store is the durable storage port. Set persists the full value for a key;
// Get returns the stored bytes, or ok=false when the key has never been
// written. Subscribe registers an observer invoked after every successful Set
// with the key that changed. Observers must re-read the store rather than
// receive the value, avoiding staleness from partial updates.
type Store interface {
	Get(key string) (data []byte, ok bool, err error)
	Set(key string, data []byte) error
	Subscribe(fn func(key string))
}

// ReadJSON unmarshals the stored value for key into v. A missing key, a read
// error or malformed JSON all leave v untouched and return false; failures
// other than absence are logged. Callers pass a pre-initialized empty value so
// every failure mode degrades to "treat as empty".
func ReadJSON(s Store, logger *slog.Logger, key string, v any) bool {
	data, ok, err := s.Get(key)
	if err != nil {
		logger.Warn("store read failed, treating as empty",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("store payload corrupted, treating as empty",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// WriteJSON marshals v and persists it under key.
func WriteJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, data)
}
