package checkout

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"flashstore/internal/domain"
	"flashstore/internal/license"
)

// Issuer is the key-issuance collaborator. Implementations must return a
// result whose license key is a non-empty, normalizable string unlikely to
// collide with existing vault entries, with an RFC 3339 timestamp. Failures
// are recoverable: the caller retries without losing the cart.
type Issuer interface {
	Issue(ctx context.Context, items []domain.CartItem) (domain.VaultEntry, error)
}

// LocalIssuer synthesizes transaction results in-process. This is the default
// issuer; no backend exists and none is simulated beyond the result shape.
type LocalIssuer struct{}

// Issue generates a 32-character hex license key and an ELON-prefixed
// transaction id for the given cart.
func (LocalIssuer) Issue(_ context.Context, items []domain.CartItem) (domain.VaultEntry, error) {
	keyBytes := make([]byte, 16)
	if _, err := rand.Read(keyBytes); err != nil {
		return domain.VaultEntry{}, fmt.Errorf("generate license key: %w", err)
	}

	return domain.VaultEntry{
		TransactionID: "ELON-" + strings.ToUpper(uuid.NewString()[:18]),
		LicenseKey:    strings.ToUpper(hex.EncodeToString(keyBytes)),
		Status:        domain.StatusCompleted,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Verification:  verificationMessage(items),
	}, nil
}

func verificationMessage(items []domain.CartItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = fmt.Sprintf("%s x%d", item.Product.Name, item.Quantity)
	}
	return fmt.Sprintf(
		"Dimensional tunnel secured for %s. Key-pair anchored to forest node lattice with zero detection latency.",
		strings.Join(names, ", "))
}

// issueRequest is the payload posted to a remote issuance endpoint.
type issueRequest struct {
	Items []issueItem `json:"items"`
	Total float64     `json:"total"`
}

type issueItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// issueResponse is the expected collaborator response. Parsed defensively:
// the collaborator is duck-typed on the wire, so every required field is
// checked before the result is trusted.
type issueResponse struct {
	TransactionID string `json:"transaction_id"`
	LicenseKey    string `json:"license_key"`
	Verification  string `json:"verification"`
}

// HTTPIssuer obtains transaction results from a remote endpoint. Malformed
// responses are a recoverable collaborator error, never a crash.
type HTTPIssuer struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPIssuer returns an issuer posting to endpoint with the given timeout.
func NewHTTPIssuer(endpoint string, timeout time.Duration) *HTTPIssuer {
	return &HTTPIssuer{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Issue posts the cart summary and validates the response schema.
func (h *HTTPIssuer) Issue(ctx context.Context, items []domain.CartItem) (domain.VaultEntry, error) {
	payload := issueRequest{Items: make([]issueItem, len(items))}
	for i, item := range items {
		payload.Items[i] = issueItem{Name: item.Product.Name, Quantity: item.Quantity}
		payload.Total += item.Subtotal()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.VaultEntry{}, fmt.Errorf("encode issuance request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.VaultEntry{}, fmt.Errorf("build issuance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return domain.VaultEntry{}, fmt.Errorf("issuance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.VaultEntry{}, fmt.Errorf("issuance endpoint returned status %d", resp.StatusCode)
	}

	var parsed issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.VaultEntry{}, fmt.Errorf("decode issuance response: %w", err)
	}
	if err := parsed.validate(); err != nil {
		return domain.VaultEntry{}, fmt.Errorf("issuance response rejected: %w", err)
	}

	return domain.VaultEntry{
		TransactionID: parsed.TransactionID,
		LicenseKey:    license.Normalize(parsed.LicenseKey),
		Status:        domain.StatusCompleted,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Verification:  parsed.Verification,
	}, nil
}

func (r issueResponse) validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return fmt.Errorf("missing transaction_id")
	}
	if license.Normalize(r.LicenseKey) == "" {
		return fmt.Errorf("missing license_key")
	}
	if strings.TrimSpace(r.Verification) == "" {
		return fmt.Errorf("missing verification")
	}
	return nil
}
