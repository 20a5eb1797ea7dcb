package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "flashstore/internal/errors"

	"flashstore/internal/cart"
	"flashstore/internal/domain"
)

// NotificationBroadcaster pushes transient acknowledgments to connected views.
type NotificationBroadcaster interface {
	BroadcastNotification(message string)
}

// CartHandler exposes the shared cart.
type CartHandler struct {
	cart   *cart.Manager
	hub    NotificationBroadcaster
	logger *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(c *cart.Manager, hub NotificationBroadcaster, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cart:   c,
		hub:    hub,
		logger: logger.With(slog.String("handler", "cart")),
	}
}

// Routes returns the cart endpoints.
func (h *CartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{productID}", h.RemoveItem)
	return r
}

// AddItemRequest is the add-to-cart payload.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

// Bind implements render.Binder.
func (a *AddItemRequest) Bind(r *http.Request) error {
	if a.ProductID == "" {
		return errors.New("product_id is required")
	}
	return nil
}

// Get returns the cart snapshot with derived totals.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.snapshot())
}

// AddItem adds a product to the cart and returns the acknowledgment message.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req := &AddItemRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	product, ok := domain.ProductByID(req.ProductID)
	if !ok {
		render.Render(w, r, apierrors.ErrProductNotFound)
		return
	}
	ack, err := h.cart.Add(product)
	if err != nil {
		h.logger.Error("failed to add cart item", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternal)
		return
	}
	h.hub.BroadcastNotification(ack)
	resp := h.snapshot()
	resp["message"] = ack
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// RemoveItem deletes a cart line. Removing an absent product succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(chi.URLParam(r, "productID")); err != nil {
		h.logger.Error("failed to remove cart item", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternal)
		return
	}
	render.JSON(w, r, h.snapshot())
}

func (h *CartHandler) snapshot() map[string]any {
	items := h.cart.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return map[string]any{
		"items": items,
		"total": h.cart.Total(),
		"count": h.cart.Count(),
	}
}
