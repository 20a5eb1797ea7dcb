package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "flashstore/internal/errors"

	"flashstore/internal/checkout"
	"flashstore/internal/domain"
)

// CheckoutHandler drives the single checkout session over HTTP. The flow is
// IDLE -> FORM -> PROCESSING -> RESULT; processing runs asynchronously and is
// observed through the status endpoint.
type CheckoutHandler struct {
	session *checkout.Session
	logger  *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(s *checkout.Session, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		session: s,
		logger:  logger.With(slog.String("handler", "checkout")),
	}
}

// Routes returns the checkout endpoints.
func (h *CheckoutHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Status)
	r.Post("/begin", h.Begin)
	r.Post("/method", h.SelectMethod)
	r.Post("/contact", h.SubmitContact)
	r.Post("/process", h.Process)
	r.Post("/abort", h.Abort)
	return r
}

// MethodRequest selects the bridge network.
type MethodRequest struct {
	Method string `json:"method"`
}

// Bind implements render.Binder.
func (m *MethodRequest) Bind(r *http.Request) error {
	if m.Method == "" {
		return errors.New("method is required")
	}
	return nil
}

// ContactRequest carries the checkout form fields.
type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Bind implements render.Binder. Field validation happens in the session.
func (c *ContactRequest) Bind(r *http.Request) error {
	return nil
}

// Status reports the session state, current processing step and result.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"state":  h.session.State(),
		"step":   h.session.CurrentStep(),
		"method": h.session.Method(),
	}
	if msg := h.session.LastError(); msg != "" {
		resp["error"] = msg
	}
	if result := h.session.Result(); result != nil {
		resp["result"] = result
	}
	render.JSON(w, r, resp)
}

// Begin opens the checkout form.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Begin(); err != nil {
		h.renderFlowError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"state": h.session.State()})
}

// SelectMethod records the payment method choice.
func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	req := &MethodRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := h.session.SelectMethod(domain.PaymentMethod(req.Method)); err != nil {
		h.renderFlowError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"method": h.session.Method()})
}

// SubmitContact validates and stores the purchaser details.
func (h *CheckoutHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	req := &ContactRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	contact := checkout.Contact{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := h.session.SubmitContact(contact); err != nil {
		h.renderFlowError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"state": h.session.State()})
}

// Process starts the scripted payment sequence in the background. The client
// polls the status endpoint or listens on the websocket for completion.
func (h *CheckoutHandler) Process(w http.ResponseWriter, r *http.Request) {
	if h.session.State() != checkout.StateForm {
		render.Render(w, r, apierrors.ErrWrongState)
		return
	}
	go func() {
		if err := h.session.Process(context.Background()); err != nil {
			h.logger.Warn("checkout processing ended with error",
				slog.String("error", err.Error()))
		}
	}()
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]any{"state": checkout.StateProcessing})
}

// Abort closes the checkout from IDLE or FORM.
func (h *CheckoutHandler) Abort(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Abort(); err != nil {
		h.renderFlowError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"state": h.session.State()})
}

func (h *CheckoutHandler) renderFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		render.Render(w, r, apierrors.ErrEmptyCart)
	case errors.Is(err, checkout.ErrWrongState), errors.Is(err, checkout.ErrAbortBlocked):
		render.Render(w, r, apierrors.ErrWrongState)
	case errors.Is(err, checkout.ErrMissingFields):
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
	default:
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
	}
}
