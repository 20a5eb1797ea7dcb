package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "flashstore/internal/errors"

	"flashstore/internal/domain"
	"flashstore/internal/exporter"
	"flashstore/internal/license"
)

// VaultHandler serves the license vault, key validation and the manifest
// exports.
type VaultHandler struct {
	registry *license.Registry
	logger   *slog.Logger
}

// NewVaultHandler creates a vault handler.
func NewVaultHandler(r *license.Registry, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{
		registry: r,
		logger:   logger.With(slog.String("handler", "vault")),
	}
}

// Routes returns the vault endpoints.
func (h *VaultHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/validate", h.Validate)
	r.Get("/export/csv", h.ExportCSV)
	r.Get("/export/xlsx", h.ExportXLSX)
	r.Get("/export/master-manifest", h.ExportMasterManifest)
	return r
}

// ValidateRequest carries a key to check without consuming it.
type ValidateRequest struct {
	Key string `json:"key"`
}

// Bind implements render.Binder. Empty keys fail validation, not binding.
func (v *ValidateRequest) Bind(r *http.Request) error {
	return nil
}

// List returns the vault, most recent first.
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.VaultEntries()
	if entries == nil {
		entries = []domain.VaultEntry{}
	}
	render.JSON(w, r, map[string]any{"entries": entries})
}

// Validate reports whether a key currently grants access. Read-only; keys are
// only consumed through the portal flow.
func (h *VaultHandler) Validate(w http.ResponseWriter, r *http.Request) {
	req := &ValidateRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error()))
		return
	}
	key := license.Normalize(req.Key)
	valid := h.registry.Validate(key)
	resp := map[string]any{"valid": valid}
	if !valid && h.registry.IsUsed(key) {
		resp["reason"] = "KEY_ALREADY_USED"
	}
	render.JSON(w, r, resp)
}

// ExportCSV downloads the vault as CSV.
func (h *VaultHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="license_vault.csv"`)
	if err := exporter.WriteVaultCSV(w, h.registry.VaultEntries()); err != nil {
		h.logger.Error("vault csv export failed", slog.String("error", err.Error()))
	}
}

// ExportXLSX downloads the vault as a workbook.
func (h *VaultHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="license_vault.xlsx"`)
	if err := exporter.WriteVaultXLSX(w, h.registry.VaultEntries()); err != nil {
		h.logger.Error("vault xlsx export failed", slog.String("error", err.Error()))
	}
}

// ExportMasterManifest downloads the administrative key manifest.
func (h *VaultHandler) ExportMasterManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="master_key_manifest.xlsx"`)
	if err := exporter.WriteMasterKeyManifest(w, license.MasterKeys()); err != nil {
		h.logger.Error("master manifest export failed", slog.String("error", err.Error()))
	}
}
