package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "flashstore/internal/errors"

	"flashstore/internal/domain"
)

// ProductHandler serves the static product catalog.
type ProductHandler struct {
	logger *slog.Logger
}

// NewProductHandler creates a product handler.
func NewProductHandler(logger *slog.Logger) *ProductHandler {
	return &ProductHandler{logger: logger.With(slog.String("handler", "product"))}
}

// Routes returns the product endpoints.
func (h *ProductHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List returns the full catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"products": domain.Catalog()})
}

// Get returns a single product by id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok := domain.ProductByID(id)
	if !ok {
		render.Render(w, r, apierrors.ErrProductNotFound)
		return
	}
	render.JSON(w, r, product)
}
