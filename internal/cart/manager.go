// Package cart maintains the session's selected products and quantities.
package cart

import (
	"fmt"
	"log/slog"

	"flashstore/internal/domain"
	"flashstore/internal/store"
)

// Manager owns the persisted cart snapshot. Every mutation persists the full
// cart; a corrupted or absent snapshot loads as an empty cart.
type Manager struct {
	store  store.Store
	logger *slog.Logger
}

// NewManager returns a cart manager over the given store.
func NewManager(s store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  s,
		logger: logger.With(slog.String("component", "cart.manager")),
	}
}

// Items returns the current cart in insertion order.
func (m *Manager) Items() []domain.CartItem {
	var items []domain.CartItem
	store.ReadJSON(m.store, m.logger, store.KeyCart, &items)
	return items
}

// Add puts a product in the cart, incrementing quantity when the product is
// already present. Returns the acknowledgment message shown to the user.
func (m *Manager) Add(p domain.Product) (string, error) {
	items := m.Items()
	found := false
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.CartItem{Product: p, Quantity: 1})
	}
	if err := store.WriteJSON(m.store, store.KeyCart, items); err != nil {
		return "", fmt.Errorf("persist cart: %w", err)
	}
	return fmt.Sprintf("%s synchronized.", p.Name), nil
}

// Remove deletes the entry with the given product id. Absent ids are ignored.
func (m *Manager) Remove(productID string) error {
	items := m.Items()
	kept := items[:0]
	for _, item := range items {
		if item.Product.ID == productID {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == len(items) {
		return nil
	}
	return store.WriteJSON(m.store, store.KeyCart, kept)
}

// Total returns the sum of price times quantity over all items. Recomputed on
// every read; the cart mutates often and the sum is cheap.
func (m *Manager) Total() float64 {
	var total float64
	for _, item := range m.Items() {
		total += item.Subtotal()
	}
	return total
}

// Count returns the total unit count across all lines.
func (m *Manager) Count() int {
	var n int
	for _, item := range m.Items() {
		n += item.Quantity
	}
	return n
}

// Clear empties the cart. Called after a successful checkout.
func (m *Manager) Clear() error {
	return store.WriteJSON(m.store, store.KeyCart, []domain.CartItem{})
}
