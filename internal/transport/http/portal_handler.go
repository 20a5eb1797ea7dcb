package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "flashstore/internal/errors"

	"flashstore/internal/domain"
	"flashstore/internal/portal"
)

// PortalHandler exposes the software portal wizard over HTTP. Every stage
// transition is a POST against the session; state and the append-only log are
// observed through the session GET.
type PortalHandler struct {
	manager *portal.Manager
	logger  *slog.Logger
}

// NewPortalHandler creates a portal handler.
func NewPortalHandler(m *portal.Manager, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{
		manager: m,
		logger:  logger.With(slog.String("handler", "portal")),
	}
}

// Routes returns the portal endpoints.
func (h *PortalHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.Open)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.Status)
		r.Delete("/", h.Close)
		r.Post("/license", h.SubmitLicense)
		r.Post("/purchase", h.RequestPurchase)
		r.Post("/type", h.SelectType)
		r.Post("/asset", h.SelectAsset)
		r.Post("/network", h.SelectNetwork)
		r.Post("/config", h.SubmitConfig)
	})
	return r
}

// OpenRequest starts a portal session for one product.
type OpenRequest struct {
	ProductID string `json:"product_id"`
}

// Bind implements render.Binder.
func (o *OpenRequest) Bind(r *http.Request) error {
	if o.ProductID == "" {
		return errors.New("product_id is required")
	}
	return nil
}

// LicenseRequest carries the presented license key.
type LicenseRequest struct {
	Key string `json:"key"`
}

// Bind implements render.Binder. Empty keys are rejected downstream with the
// user-facing message.
func (l *LicenseRequest) Bind(r *http.Request) error {
	return nil
}

// TypeRequest selects the transfer type.
type TypeRequest struct {
	Type string `json:"type"`
}

// Bind implements render.Binder.
func (t *TypeRequest) Bind(r *http.Request) error {
	if t.Type == "" {
		return errors.New("type is required")
	}
	return nil
}

// AssetRequest selects the asset.
type AssetRequest struct {
	Symbol string `json:"symbol"`
}

// Bind implements render.Binder.
func (a *AssetRequest) Bind(r *http.Request) error {
	if a.Symbol == "" {
		return errors.New("symbol is required")
	}
	return nil
}

// NetworkRequest selects the chain for multi-network assets.
type NetworkRequest struct {
	Network string `json:"network"`
}

// Bind implements render.Binder.
func (n *NetworkRequest) Bind(r *http.Request) error {
	if n.Network == "" {
		return errors.New("network is required")
	}
	return nil
}

// ConfigRequest carries the flash parameters.
type ConfigRequest struct {
	Wallet string  `json:"wallet"`
	Amount float64 `json:"amount"`
}

// Bind implements render.Binder. Field validation happens in the session.
func (c *ConfigRequest) Bind(r *http.Request) error {
	return nil
}

// Open creates a session and starts boot playback.
func (h *PortalHandler) Open(w http.ResponseWriter, r *http.Request) {
	req := &OpenRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	session, err := h.manager.Open(req.ProductID)
	if err != nil {
		render.Render(w, r, apierrors.ErrProductNotFound)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.sessionView(session))
}

// Status reports the session stage and log.
func (h *PortalHandler) Status(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// Close tears down the session.
func (h *PortalHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.manager.Close(chi.URLParam(r, "id"))
	render.NoContent(w, r)
}

// SubmitLicense validates the presented key.
func (h *PortalHandler) SubmitLicense(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req := &LicenseRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := session.SubmitLicense(req.Key); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// RequestPurchase routes the user to the purchase flow instead.
func (h *PortalHandler) RequestPurchase(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.RequestPurchase(); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// SelectType records the transfer type.
func (h *PortalHandler) SelectType(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req := &TypeRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := session.SelectType(domain.TransferType(req.Type)); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// SelectAsset records the asset choice.
func (h *PortalHandler) SelectAsset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req := &AssetRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := session.SelectAsset(req.Symbol); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// SelectNetwork records the chain choice.
func (h *PortalHandler) SelectNetwork(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req := &NetworkRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := session.SelectNetwork(req.Network); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

// SubmitConfig locks the flash parameters, burns the key and starts execution
// playback.
func (h *PortalHandler) SubmitConfig(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req := &ConfigRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	if err := session.SubmitConfig(req.Wallet, req.Amount); err != nil {
		h.renderFlowError(w, r, session, err)
		return
	}
	render.JSON(w, r, h.sessionView(session))
}

func (h *PortalHandler) session(w http.ResponseWriter, r *http.Request) (*portal.Session, bool) {
	session, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		render.Render(w, r, apierrors.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

func (h *PortalHandler) sessionView(s *portal.Session) map[string]any {
	view := map[string]any{
		"id":      s.ID,
		"product": s.Product,
		"stage":   s.Stage(),
		"log":     s.Log(),
	}
	if msg := s.LastError(); msg != "" {
		view["error"] = msg
	}
	if s.PurchaseRequested() {
		view["purchase_requested"] = true
	}
	return view
}

func (h *PortalHandler) renderFlowError(w http.ResponseWriter, r *http.Request, s *portal.Session, err error) {
	switch {
	case errors.Is(err, portal.ErrSessionDone):
		render.Render(w, r, apierrors.ErrSessionNotFound)
	case errors.Is(err, portal.ErrWrongStage):
		render.Render(w, r, apierrors.ErrWrongState)
	case errors.Is(err, portal.ErrInvalidInput):
		msg := s.LastError()
		switch {
		case msg == portal.MsgKeyAlreadyUsed:
			render.Render(w, r, apierrors.ErrKeyAlreadyUsed)
		case msg == portal.MsgInvalidKey:
			render.Render(w, r, apierrors.ErrInvalidLicenseKey)
		case strings.HasPrefix(msg, "TRANSFER LIMIT EXCEEDED"):
			render.Render(w, r, apierrors.NewWithDetails(http.StatusUnprocessableEntity, "AMOUNT_LIMIT_EXCEEDED", "Amount exceeds the product transfer limit", msg))
		default:
			render.Render(w, r, apierrors.NewWithDetails(http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		}
	default:
		h.logger.Error("portal action failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.ErrInternal)
	}
}
